package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvDefaultLifetime = "STILETTO_DEFAULT_LIFETIME"
	EnvTieBreak        = "STILETTO_TIE_BREAK"
	EnvLogLevel        = "STILETTO_LOG_LEVEL"
	EnvFreezeOnResolve = "STILETTO_FREEZE_ON_RESOLVE"
	EnvCacheSelections = "STILETTO_CACHE_SELECTIONS"
)

type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from STILETTO_* variables found by lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvDefaultLifetime); ok {
		c.DefaultLifetime = v
	}
	if v, ok := lookup(EnvTieBreak); ok {
		c.TieBreak = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}

	errs := &ValidationError{}
	applyBool(lookup, EnvFreezeOnResolve, &c.FreezeOnResolve, errs)
	applyBool(lookup, EnvCacheSelections, &c.CacheSelections, errs)
	return errs.ToError()
}

func applyBool(lookup LookupFunc, key string, dst *bool, errs *ValidationError) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.Addf("%s: %q is not a boolean", key, v)
		return
	}
	*dst = b
}

// FromEnv applies overrides from the process environment.
func (c *Config) FromEnv() error {
	return c.ApplyEnv(os.LookupEnv)
}

// LoadEnvFiles applies overrides from dotenv files without touching the
// process environment. Later files win.
func (c *Config) LoadEnvFiles(files ...string) error {
	values, err := godotenv.Read(files...)
	if err != nil {
		return fmt.Errorf("failed to read env files: %w", err)
	}
	return c.ApplyEnv(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

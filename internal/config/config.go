// Package config loads container settings from YAML, TOML, dotenv files and
// the environment.
package config

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/danpasecinic/stiletto/internal/lifetime"
)

const (
	TieBreakError            = "error"
	TieBreakDeclarationOrder = "declaration_order"
)

// Config holds container settings.
type Config struct {
	// DefaultLifetime applies to bindings registered without an explicit lifetime.
	DefaultLifetime string `yaml:"default_lifetime" toml:"default_lifetime"`
	// TieBreak is either "error" or "declaration_order".
	TieBreak string `yaml:"tie_break" toml:"tie_break"`
	// LogLevel is a zerolog level name.
	LogLevel        string `yaml:"log_level" toml:"log_level"`
	FreezeOnResolve bool   `yaml:"freeze_on_resolve" toml:"freeze_on_resolve"`
	CacheSelections bool   `yaml:"cache_selections" toml:"cache_selections"`
}

func Default() *Config {
	return &Config{
		DefaultLifetime: lifetime.Transient.String(),
		TieBreak:        TieBreakError,
		LogLevel:        zerolog.WarnLevel.String(),
		CacheSelections: true,
	}
}

// Lifetime returns the parsed default lifetime, falling back to transient.
func (c *Config) Lifetime() lifetime.Lifetime {
	lt, _ := lifetime.Parse(c.DefaultLifetime)
	return lt
}

// DeclarationOrder reports whether ranking ties resolve to the first declared constructor.
func (c *Config) DeclarationOrder() bool {
	return normalize(c.TieBreak) == TieBreakDeclarationOrder
}

// Level returns the parsed log level, falling back to warn.
func (c *Config) Level() zerolog.Level {
	if c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	if _, ok := lifetime.Parse(c.DefaultLifetime); !ok {
		errs.Addf("default_lifetime: unknown lifetime %q (want transient or singleton)", c.DefaultLifetime)
	}

	switch normalize(c.TieBreak) {
	case "", TieBreakError, TieBreakDeclarationOrder:
	default:
		errs.Addf("tie_break: unknown strategy %q (want %s or %s)", c.TieBreak, TieBreakError, TieBreakDeclarationOrder)
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
			errs.Addf("log_level: %v", err)
		}
	}

	return errs.ToError()
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

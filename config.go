package stiletto

import (
	"github.com/rs/zerolog"

	"github.com/danpasecinic/stiletto/internal/config"
)

type Config = config.Config

func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML or TOML file, then applies STILETTO_* environment
// overrides and any dotenv files given.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errConfigInvalid(err)
	}

	if len(envFiles) > 0 {
		if err := cfg.LoadEnvFiles(envFiles...); err != nil {
			return nil, errConfigInvalid(err)
		}
	}

	if err := cfg.FromEnv(); err != nil {
		return nil, errConfigInvalid(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigInvalid(err)
	}
	return cfg, nil
}

// WithConfig applies a loaded configuration. Options given after it win.
func WithConfig(cfg *Config) Option {
	return func(c *containerConfig) {
		if cfg == nil {
			return
		}

		c.defaultLifetime = cfg.Lifetime()
		c.tieBreak = TieBreakError
		if cfg.DeclarationOrder() {
			c.tieBreak = TieBreakDeclarationOrder
		}
		c.freezeOnResolve = cfg.FreezeOnResolve
		c.cacheSelections = cfg.CacheSelections

		level := cfg.Level()
		c.level = &level
	}
}

// WithLogLevel filters the container logger.
func WithLogLevel(level zerolog.Level) Option {
	return func(c *containerConfig) {
		c.level = &level
	}
}

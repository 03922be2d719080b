package stiletto

import (
	"github.com/rs/zerolog"

	"github.com/danpasecinic/stiletto/internal/container"
)

type Option func(*containerConfig)

type TieBreak = container.TieBreak

const (
	TieBreakError            = container.TieBreakError
	TieBreakDeclarationOrder = container.TieBreakDeclarationOrder
)

func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithTieBreak sets what happens when two constructors rank equally.
// The default is TieBreakError.
func WithTieBreak(tieBreak TieBreak) Option {
	return func(cfg *containerConfig) {
		cfg.tieBreak = tieBreak
	}
}

// WithDefaultLifetime sets the lifetime of bindings registered without AsSingleton,
// AsTransient or WithLifetime.
func WithDefaultLifetime(lt Lifetime) Option {
	return func(cfg *containerConfig) {
		cfg.defaultLifetime = lt
	}
}

// WithFreezeOnResolve freezes the registry on the first resolution.
func WithFreezeOnResolve() Option {
	return func(cfg *containerConfig) {
		cfg.freezeOnResolve = true
	}
}

func WithSelectionCache(enabled bool) Option {
	return func(cfg *containerConfig) {
		cfg.cacheSelections = enabled
	}
}

// WithIntrospector adds a constructor source consulted before Describe.
func WithIntrospector(introspector Introspector) Option {
	return func(cfg *containerConfig) {
		cfg.introspector = introspector
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *containerConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}

func WithBindObserver(hook BindHook) Option {
	return func(cfg *containerConfig) {
		cfg.onBind = append(cfg.onBind, hook)
	}
}

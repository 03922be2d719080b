package stiletto

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/danpasecinic/stiletto/internal/container"
)

type Container struct {
	id       string
	internal *container.Container
	config   *containerConfig
}

type containerConfig struct {
	logger          zerolog.Logger
	level           *zerolog.Level
	tieBreak        TieBreak
	defaultLifetime Lifetime
	freezeOnResolve bool
	cacheSelections bool
	introspector    Introspector
	onResolve       []ResolveHook
	onBind          []BindHook
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger:          zerolog.Nop(),
		tieBreak:        TieBreakError,
		defaultLifetime: Transient,
		cacheSelections: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	id := uuid.New().String()
	logger := cfg.logger.With().Str("container", id).Logger()
	if cfg.level != nil {
		logger = logger.Level(*cfg.level)
	}

	internal := container.New(
		&container.Config{
			Logger:          &logger,
			Introspector:    cfg.introspector,
			TieBreak:        cfg.tieBreak,
			FreezeOnResolve: cfg.freezeOnResolve,
			CacheSelections: cfg.cacheSelections,
			OnResolve: lo.Map(cfg.onResolve, func(h ResolveHook, _ int) container.ResolveHook {
				return container.ResolveHook(h)
			}),
			OnBind: lo.Map(cfg.onBind, func(h BindHook, _ int) container.BindHook {
				return func(b *container.Binding) { h(b.Service.String(), b.Lifetime) }
			}),
		},
	)

	return &Container{
		id:       id,
		internal: internal,
		config:   cfg,
	}
}

// ID identifies the container in its log lines.
func (c *Container) ID() string {
	return c.id
}

// Validate checks every binding without building anything: constructor
// selection, ambiguous dependencies and cycles.
func (c *Container) Validate() error {
	if err := c.internal.Validate(); err != nil {
		return errValidationFailed(err)
	}
	return nil
}

// WarmUp validates the container and builds every singleton, dependencies first.
func (c *Container) WarmUp(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.internal.WarmUp(ctx)
}

// Freeze rejects further registrations. Resolution is safe from any number
// of goroutines once the container is frozen.
func (c *Container) Freeze() {
	c.internal.Freeze()
}

func (c *Container) Frozen() bool {
	return c.internal.Frozen()
}

// Size reports the number of bindings.
func (c *Container) Size() int {
	return c.internal.Size()
}

// Keys lists every registered service key in first registration order.
func (c *Container) Keys() []string {
	return lo.Map(c.internal.Keys(), func(k ServiceKey, _ int) string { return k.String() })
}

func (c *Container) Resolve(ctx context.Context, key ServiceKey) (any, error) {
	return c.internal.Resolve(ctx, key)
}

func (c *Container) ResolveAll(ctx context.Context, key ServiceKey) ([]any, error) {
	return c.internal.ResolveAll(ctx, key)
}

func (c *Container) Has(key ServiceKey) bool {
	return c.internal.Has(key)
}

var _ Resolver = (*Container)(nil)

package container

import (
	reflectPkg "reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danpasecinic/stiletto/internal/reflect"
)

type ResolveHook func(key string, duration time.Duration, err error)

type BindHook func(binding *Binding)

type Container struct {
	registry     *Registry
	types        *TypeTable
	introspector Introspector
	selector     *Selector
	cache        *instanceCache
	logger       zerolog.Logger

	freezeOnResolve bool
	cacheSelections bool
	plans           sync.Map
	// generation counts Describe calls; memoized selections from an older
	// generation are ignored.
	generation atomic.Uint64

	onResolve []ResolveHook
	onBind    []BindHook
}

type Config struct {
	Logger *zerolog.Logger
	// Introspector is consulted before the container's own TypeTable.
	Introspector    Introspector
	TieBreak        TieBreak
	FreezeOnResolve bool
	CacheSelections bool
	OnResolve       []ResolveHook
	OnBind          []BindHook
}

func New(cfg *Config) *Container {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	types := NewTypeTable()
	var introspector Introspector = types
	if cfg.Introspector != nil {
		introspector = chainIntrospector{cfg.Introspector, types}
	}

	registry := NewRegistry()

	return &Container{
		registry:        registry,
		types:           types,
		introspector:    introspector,
		selector:        NewSelector(registry, cfg.TieBreak, logger),
		cache:           newInstanceCache(),
		logger:          logger,
		freezeOnResolve: cfg.FreezeOnResolve,
		cacheSelections: cfg.CacheSelections,
		onResolve:       cfg.OnResolve,
		onBind:          cfg.OnBind,
	}
}

func (c *Container) Register(b Binding) (*Binding, error) {
	entry, err := c.registry.Register(b)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("service", entry.Service.String()).
		Uint64("binding", entry.Index).
		Str("lifetime", entry.Lifetime.String()).
		Msg("binding registered")

	for _, hook := range c.onBind {
		hook(entry)
	}
	return entry, nil
}

func (c *Container) Describe(t reflectPkg.Type, ctors ...*Constructor) error {
	if err := c.types.Describe(t, ctors...); err != nil {
		return err
	}
	c.generation.Add(1)
	c.plans.Delete(t)
	return nil
}

func (c *Container) Constructors(t reflectPkg.Type) []Constructor {
	return c.introspector.Constructors(t)
}

func (c *Container) Freeze() {
	if c.registry.Frozen() {
		return
	}
	c.registry.Freeze()
	c.logger.Info().Int("bindings", c.registry.Size()).Msg("registry frozen")
}

func (c *Container) Frozen() bool {
	return c.registry.Frozen()
}

func (c *Container) Has(key ServiceKey) bool {
	return c.registry.Has(key)
}

func (c *Container) Lookup(key ServiceKey) []*Binding {
	return c.registry.Lookup(key)
}

func (c *Container) Keys() []ServiceKey {
	return c.registry.Keys()
}

func (c *Container) Bindings() []*Binding {
	return c.registry.All()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

// Instance returns the cached singleton for b, if one has been built.
func (c *Container) Instance(b *Binding) (any, bool) {
	return c.cache.Get(b.Index)
}

// Instantiated reports how many singletons have been built.
func (c *Container) Instantiated() int {
	return c.cache.Len()
}

type selection struct {
	ctor       *Constructor
	generation uint64
}

// SelectConstructor runs constructor selection for impl. Once the registry is
// frozen only Describe can change the outcome, so successful selections are
// memoized per Describe generation.
func (c *Container) SelectConstructor(impl reflectPkg.Type) (*Constructor, error) {
	memoize := c.cacheSelections && c.registry.Frozen()
	generation := c.generation.Load()
	if memoize {
		if plan, ok := c.plans.Load(impl); ok && plan.(selection).generation == generation {
			return plan.(selection).ctor, nil
		}
	}

	ctor, err := c.selector.Select(impl, c.introspector.Constructors(impl))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("type", reflect.TypeName(impl)).
		Str("constructor", ctor.Name).
		Int("params", len(ctor.Params)).
		Msg("constructor selected")

	if memoize {
		c.plans.Store(impl, selection{ctor: ctor, generation: generation})
	}
	return ctor, nil
}

func (c *Container) callResolveHooks(key string, duration time.Duration, err error) {
	for _, hook := range c.onResolve {
		hook(key, duration, err)
	}
}

package stiletto

import (
	"context"

	"github.com/samber/mo"

	"github.com/danpasecinic/stiletto/internal/container"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

// Factory builds a service by hand. The Resolver shares the cycle detection
// of the resolution that called the factory.
type Factory[T any] func(ctx context.Context, r Resolver) (T, error)

type BindOption func(*bindConfig)

type bindConfig struct {
	key      mo.Option[string]
	lifetime mo.Option[Lifetime]
}

func WithKey(key string) BindOption {
	return func(cfg *bindConfig) {
		cfg.key = mo.Some(key)
	}
}

func AsSingleton() BindOption {
	return WithLifetime(Singleton)
}

func AsTransient() BindOption {
	return WithLifetime(Transient)
}

func WithLifetime(lt Lifetime) BindOption {
	return func(cfg *bindConfig) {
		cfg.lifetime = mo.Some(lt)
	}
}

func newBindConfig(opts []BindOption) *bindConfig {
	cfg := &bindConfig{
		key:      mo.None[string](),
		lifetime: mo.None[Lifetime](),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *bindConfig) serviceKey(svc ServiceKey) ServiceKey {
	svc.Key = cfg.key
	return svc
}

// Bind registers I as an implementation of S. I is built through its
// described constructors. Binding the same service twice adds a second
// implementation rather than replacing the first.
func Bind[S, I any](c *Container, opts ...BindOption) error {
	cfg := newBindConfig(opts)

	_, err := c.internal.Register(container.Binding{
		Service:        cfg.serviceKey(KeyOf[S]()),
		Implementation: reflect.TypeOf[I](),
		Lifetime:       cfg.lifetime.OrElse(c.config.defaultLifetime),
	})
	return err
}

func BindSelf[T any](c *Container, opts ...BindOption) error {
	return Bind[T, T](c, opts...)
}

func BindFactory[T any](c *Container, factory Factory[T], opts ...BindOption) error {
	cfg := newBindConfig(opts)
	key := cfg.serviceKey(KeyOf[T]())

	if factory == nil {
		return container.NewError(ErrCodeInvalidBinding, "factory is nil", nil).WithService(key.String())
	}

	_, err := c.internal.Register(container.Binding{
		Service: key,
		Factory: func(ctx context.Context, r container.Resolver) (any, error) {
			return factory(ctx, r)
		},
		Lifetime: cfg.lifetime.OrElse(c.config.defaultLifetime),
	})
	return err
}

// BindValue registers an existing instance. The binding is always a singleton.
func BindValue[T any](c *Container, value T, opts ...BindOption) error {
	cfg := newBindConfig(opts)

	_, err := c.internal.Register(container.Binding{
		Service: cfg.serviceKey(KeyOf[T]()),
		Factory: func(context.Context, container.Resolver) (any, error) {
			return value, nil
		},
		Lifetime: Singleton,
	})
	return err
}

func MustBind[S, I any](c *Container, opts ...BindOption) {
	if err := Bind[S, I](c, opts...); err != nil {
		panic(err)
	}
}

func MustBindFactory[T any](c *Container, factory Factory[T], opts ...BindOption) {
	if err := BindFactory(c, factory, opts...); err != nil {
		panic(err)
	}
}

func MustBindValue[T any](c *Container, value T, opts ...BindOption) {
	if err := BindValue(c, value, opts...); err != nil {
		panic(err)
	}
}

package container

import (
	"context"
	"errors"
	reflectPkg "reflect"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/danpasecinic/stiletto/internal/lifetime"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

// resolution tracks the bindings under construction for one top-level request.
// waiting is the singleton entry it is blocked on, read by other goroutines.
type resolution struct {
	stack   []ServiceKey
	waiting atomic.Pointer[cacheEntry]
}

func (r *resolution) push(key ServiceKey) error {
	if lo.Contains(r.stack, key) {
		chain := append(r.chain(), key.String())
		return errCircularDependency(chain)
	}
	r.stack = append(r.stack, key)
	return nil
}

func (r *resolution) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *resolution) chain() []string {
	return lo.Map(r.stack, keyString)
}

// annotate records the current chain on err when no deeper frame has already done so.
func (r *resolution) annotate(err *Error) *Error {
	if err.Stack == nil && len(r.stack) > 0 {
		err.Stack = r.chain()
	}
	return err
}

func (c *Container) Resolve(ctx context.Context, key ServiceKey) (any, error) {
	start := time.Now()
	c.beginResolve()

	instance, err := c.resolve(ctx, &resolution{}, key)
	c.callResolveHooks(key.String(), time.Since(start), err)
	return instance, err
}

func (c *Container) ResolveAll(ctx context.Context, key ServiceKey) ([]any, error) {
	start := time.Now()
	c.beginResolve()

	instances, err := c.resolveAll(ctx, &resolution{}, key)
	c.callResolveHooks("[]"+key.String(), time.Since(start), err)
	return instances, err
}

func (c *Container) beginResolve() {
	if c.freezeOnResolve {
		c.Freeze()
	}
}

func (c *Container) resolve(ctx context.Context, rc *resolution, key ServiceKey) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bindings := c.registry.Lookup(key)
	switch len(bindings) {
	case 0:
		return nil, rc.annotate(c.selector.Unbound(key))
	case 1:
		return c.resolveBinding(ctx, rc, bindings[0])
	default:
		return nil, rc.annotate(errAmbiguousBinding(key, bindings))
	}
}

func (c *Container) resolveAll(ctx context.Context, rc *resolution, key ServiceKey) ([]any, error) {
	bindings := c.registry.Lookup(key)
	instances := make([]any, 0, len(bindings))
	for _, b := range bindings {
		instance, err := c.resolveBinding(ctx, rc, b)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

func (c *Container) resolveBinding(ctx context.Context, rc *resolution, b *Binding) (any, error) {
	if err := rc.push(b.Service); err != nil {
		return nil, err
	}
	defer rc.pop()

	if b.Lifetime != lifetime.Singleton {
		return c.build(ctx, rc, b)
	}

	instance, created, err := c.cache.GetOrCreate(b.Index, rc, func() (any, error) {
		return c.build(ctx, rc, b)
	})
	if errors.Is(err, errWaitCycle) {
		return nil, errCircularDependency(rc.chain())
	}
	if created {
		c.logger.Debug().
			Str("service", b.Service.String()).
			Uint64("binding", b.Index).
			Msg("singleton created")
	}
	return instance, err
}

func (c *Container) build(ctx context.Context, rc *resolution, b *Binding) (any, error) {
	if b.Factory != nil {
		return c.buildFromFactory(ctx, rc, b)
	}

	ctor, err := c.SelectConstructor(b.Implementation)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, rc.annotate(e)
		}
		return nil, err
	}

	args := make([]reflectPkg.Value, len(ctor.Params))
	for i, p := range ctor.Params {
		v, err := c.resolveParam(ctx, rc, p)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	instance, err := ctor.Invoke(args)
	if err != nil {
		return nil, rc.annotate(errFactoryFailed(b.Service.String(), err))
	}
	return instance, nil
}

func (c *Container) buildFromFactory(ctx context.Context, rc *resolution, b *Binding) (any, error) {
	instance, err := b.Factory(ctx, &boundResolver{container: c, resolution: rc})
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, rc.annotate(errFactoryFailed(b.Service.String(), err))
	}

	if instance != nil && !reflectPkg.TypeOf(instance).AssignableTo(b.Service.Type) {
		return nil, rc.annotate(errTypeMismatch(
			b.Service.String(),
			errors.New("factory returned "+reflect.TypeName(reflectPkg.TypeOf(instance))),
		))
	}
	return instance, nil
}

// resolveParam falls back to the parameter default only when nothing is
// registered under the parameter's key.
func (c *Container) resolveParam(ctx context.Context, rc *resolution, p Param) (reflectPkg.Value, error) {
	key := p.ServiceKey()
	if def, ok := p.Default.Get(); ok && !c.registry.Has(key) {
		return def, nil
	}

	if p.Collection {
		instances, err := c.resolveAll(ctx, rc, key)
		if err != nil {
			return reflectPkg.Value{}, err
		}
		v, err := reflect.SliceOf(p.Type, instances)
		if err != nil {
			return reflectPkg.Value{}, rc.annotate(errTypeMismatch(key.String(), err))
		}
		return v, nil
	}

	instance, err := c.resolve(ctx, rc, key)
	if err != nil {
		return reflectPkg.Value{}, err
	}
	v, err := reflect.ValueFor(p.Type, instance)
	if err != nil {
		return reflectPkg.Value{}, rc.annotate(errTypeMismatch(key.String(), err))
	}
	return v, nil
}

// boundResolver lets factories resolve dependencies within the resolution
// that invoked them, so cycles through factories are still detected.
type boundResolver struct {
	container  *Container
	resolution *resolution
}

func (r *boundResolver) Resolve(ctx context.Context, key ServiceKey) (any, error) {
	return r.container.resolve(ctx, r.resolution, key)
}

func (r *boundResolver) ResolveAll(ctx context.Context, key ServiceKey) ([]any, error) {
	return r.container.resolveAll(ctx, r.resolution, key)
}

func (r *boundResolver) Has(key ServiceKey) bool {
	return r.container.Has(key)
}

var _ Resolver = (*boundResolver)(nil)
var _ Resolver = (*Container)(nil)

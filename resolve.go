package stiletto

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"github.com/danpasecinic/stiletto/internal/container"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

type (
	// Resolver is implemented by *Container and by the resolver handed to factories.
	Resolver   = container.Resolver
	ServiceKey = container.ServiceKey
)

func KeyOf[T any]() ServiceKey {
	return container.KeyOf(reflect.TypeOf[T]())
}

func KeyedOf[T any](key string) ServiceKey {
	return container.KeyedOf(reflect.TypeOf[T](), key)
}

func Resolve[T any](r Resolver) (T, error) {
	return ResolveCtx[T](context.Background(), r)
}

func ResolveCtx[T any](ctx context.Context, r Resolver) (T, error) {
	return resolveKey[T](ctx, r, KeyOf[T]())
}

func ResolveKeyed[T any](r Resolver, key string) (T, error) {
	return ResolveKeyedCtx[T](context.Background(), r, key)
}

func ResolveKeyedCtx[T any](ctx context.Context, r Resolver, key string) (T, error) {
	return resolveKey[T](ctx, r, KeyedOf[T](key))
}

// ResolveAll builds every binding registered for T, in registration order.
// It returns an empty slice when nothing is registered.
func ResolveAll[T any](r Resolver) ([]T, error) {
	return ResolveAllCtx[T](context.Background(), r)
}

func ResolveAllCtx[T any](ctx context.Context, r Resolver) ([]T, error) {
	return resolveAllKey[T](ctx, r, KeyOf[T]())
}

func ResolveAllKeyed[T any](r Resolver, key string) ([]T, error) {
	return resolveAllKey[T](context.Background(), r, KeyedOf[T](key))
}

func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

func MustResolveKeyed[T any](r Resolver, key string) T {
	v, err := ResolveKeyed[T](r, key)
	if err != nil {
		panic(err)
	}
	return v
}

func MustResolveAll[T any](r Resolver) []T {
	v, err := ResolveAll[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// TryResolve reports false with a nil error when T has no binding. Failures
// while building a registered T are returned.
func TryResolve[T any](r Resolver) (T, bool, error) {
	if !Has[T](r) {
		var zero T
		return zero, false, nil
	}
	v, err := Resolve[T](r)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

func TryResolveOption[T any](r Resolver) (mo.Option[T], error) {
	v, ok, err := TryResolve[T](r)
	if err != nil || !ok {
		return mo.None[T](), err
	}
	return mo.Some(v), nil
}

func Has[T any](r Resolver) bool {
	return r.Has(KeyOf[T]())
}

func HasKeyed[T any](r Resolver, key string) bool {
	return r.Has(KeyedOf[T](key))
}

func resolveKey[T any](ctx context.Context, r Resolver, key ServiceKey) (T, error) {
	instance, err := r.Resolve(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](key, instance)
}

func resolveAllKey[T any](ctx context.Context, r Resolver, key ServiceKey) ([]T, error) {
	instances, err := r.ResolveAll(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(instances))
	for i, instance := range instances {
		if out[i], err = cast[T](key, instance); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func cast[T any](key ServiceKey, instance any) (T, error) {
	if instance == nil {
		var zero T
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, container.NewError(
			ErrCodeTypeMismatch,
			fmt.Sprintf("resolved %T, want %s", instance, reflect.TypeName(reflect.TypeOf[T]())),
			nil,
		).WithService(key.String())
	}
	return typed, nil
}

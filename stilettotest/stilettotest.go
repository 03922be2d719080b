// Package stilettotest provides test helpers for containers built with stiletto.
package stilettotest

import (
	"context"

	"github.com/danpasecinic/stiletto"
)

type TB interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

type TestContainer struct {
	*stiletto.Container
	tb TB
}

func New(tb TB, opts ...stiletto.Option) *TestContainer {
	tb.Helper()

	return &TestContainer{
		Container: stiletto.New(opts...),
		tb:        tb,
	}
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	if err := tc.Validate(); err != nil {
		tc.tb.Fatalf("container validation failed: %v", err)
	}
}

func (tc *TestContainer) RequireWarmUp(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.WarmUp(ctx); err != nil {
		tc.tb.Fatalf("container warm-up failed: %v", err)
	}
}

func (tc *TestContainer) RequireApply(modules ...*stiletto.Module) {
	tc.tb.Helper()

	if err := tc.Apply(modules...); err != nil {
		tc.tb.Fatalf("failed to apply modules: %v", err)
	}
}

func MustDescribe[T any](tc *TestContainer, ctors ...stiletto.CtorSpec) {
	tc.tb.Helper()

	if err := stiletto.Describe[T](tc.Container, ctors...); err != nil {
		tc.tb.Fatalf("failed to describe %s: %v", stiletto.KeyOf[T](), err)
	}
}

func MustBind[S, I any](tc *TestContainer, opts ...stiletto.BindOption) {
	tc.tb.Helper()

	if err := stiletto.Bind[S, I](tc.Container, opts...); err != nil {
		tc.tb.Fatalf("failed to bind %s: %v", stiletto.KeyOf[S](), err)
	}
}

func MustBindSelf[T any](tc *TestContainer, opts ...stiletto.BindOption) {
	tc.tb.Helper()

	if err := stiletto.BindSelf[T](tc.Container, opts...); err != nil {
		tc.tb.Fatalf("failed to bind %s: %v", stiletto.KeyOf[T](), err)
	}
}

func MustBindValue[T any](tc *TestContainer, value T, opts ...stiletto.BindOption) {
	tc.tb.Helper()

	if err := stiletto.BindValue(tc.Container, value, opts...); err != nil {
		tc.tb.Fatalf("failed to bind value %s: %v", stiletto.KeyOf[T](), err)
	}
}

func MustBindFactory[T any](tc *TestContainer, factory stiletto.Factory[T], opts ...stiletto.BindOption) {
	tc.tb.Helper()

	if err := stiletto.BindFactory(tc.Container, factory, opts...); err != nil {
		tc.tb.Fatalf("failed to bind factory %s: %v", stiletto.KeyOf[T](), err)
	}
}

func RequireResolve[T any](tc *TestContainer) T {
	tc.tb.Helper()

	v, err := stiletto.Resolve[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyOf[T](), err)
	}
	return v
}

func RequireResolveKeyed[T any](tc *TestContainer, key string) T {
	tc.tb.Helper()

	v, err := stiletto.ResolveKeyed[T](tc.Container, key)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyedOf[T](key), err)
	}
	return v
}

func RequireResolveAll[T any](tc *TestContainer) []T {
	tc.tb.Helper()

	v, err := stiletto.ResolveAll[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve all %s: %v", stiletto.KeyOf[T](), err)
	}
	return v
}

// AssertSingleton resolves T twice and expects the same instance.
func AssertSingleton[T comparable](tc *TestContainer) {
	tc.tb.Helper()

	first, err := stiletto.Resolve[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyOf[T](), err)
		return
	}
	second, err := stiletto.Resolve[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyOf[T](), err)
		return
	}

	if first != second {
		tc.tb.Errorf("expected %s to be a singleton, got two instances", stiletto.KeyOf[T]())
	}
}

// AssertTransient resolves T twice and expects distinct instances.
func AssertTransient[T comparable](tc *TestContainer) {
	tc.tb.Helper()

	first, err := stiletto.Resolve[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyOf[T](), err)
		return
	}
	second, err := stiletto.Resolve[T](tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to resolve %s: %v", stiletto.KeyOf[T](), err)
		return
	}

	if first == second {
		tc.tb.Errorf("expected %s to be transient, got the same instance twice", stiletto.KeyOf[T]())
	}
}

// AssertResolveError expects resolving T to fail with code somewhere in the error chain.
func AssertResolveError[T any](tc *TestContainer, code stiletto.ErrorCode) {
	tc.tb.Helper()

	_, err := stiletto.Resolve[T](tc.Container)
	switch {
	case err == nil:
		tc.tb.Errorf("expected resolving %s to fail with %s, got no error", stiletto.KeyOf[T](), code)
	case !stiletto.HasCode(err, code):
		tc.tb.Errorf("expected resolving %s to fail with %s, got: %v", stiletto.KeyOf[T](), code, err)
	}
}

func AssertHas[T any](tc *TestContainer) {
	tc.tb.Helper()

	if !stiletto.Has[T](tc.Container) {
		tc.tb.Errorf("expected container to have %s", stiletto.KeyOf[T]())
	}
}

func AssertHasKeyed[T any](tc *TestContainer, key string) {
	tc.tb.Helper()

	if !stiletto.HasKeyed[T](tc.Container, key) {
		tc.tb.Errorf("expected container to have %s", stiletto.KeyedOf[T](key))
	}
}

func AssertNotHas[T any](tc *TestContainer) {
	tc.tb.Helper()

	if stiletto.Has[T](tc.Container) {
		tc.tb.Errorf("expected container to not have %s", stiletto.KeyOf[T]())
	}
}

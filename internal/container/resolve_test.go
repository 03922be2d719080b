package container

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/stiletto/internal/lifetime"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

type (
	cycleA struct{ b *cycleB }
	cycleB struct{ a *cycleA }
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type french struct{}

func (french) Greet() string { return "bonjour" }

type chorus struct{ voices []greeter }

var (
	typeCycleA  = reflect.TypeOf[*cycleA]()
	typeCycleB  = reflect.TypeOf[*cycleB]()
	typeGreeter = reflect.TypeOf[greeter]()
	typeEnglish = reflect.TypeOf[english]()
	typeFrench  = reflect.TypeOf[french]()
	typeChorus  = reflect.TypeOf[*chorus]()
)

func describeGreeters(t *testing.T, c *Container) {
	t.Helper()

	require.NoError(t, c.Describe(typeEnglish, ctorOf(t, "english", func() english { return english{} })))
	require.NoError(t, c.Describe(typeFrench, ctorOf(t, "french", func() french { return french{} })))
	require.NoError(t, c.Describe(typeChorus, ctorOf(t, "chorus", func(v []greeter) *chorus { return &chorus{voices: v} })))
}

func TestResolve_LookupErrors(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	describeGreeters(t, c)
	bindKeyed(t, c, typeGreeter, "en", typeEnglish)
	bindType(t, c, typeC1, typeC1, lifetime.Transient)
	bindType(t, c, typeC1, typeC1, lifetime.Transient)

	tests := []struct {
		name string
		key  ServiceKey
		code ErrorCode
	}{
		{name: "unknown type", key: KeyOf(typeC2), code: ErrCodeServiceNotFound},
		{name: "unkeyed with only keyed bindings", key: KeyOf(typeGreeter), code: ErrCodeMissingKeyedBinding},
		{name: "unknown key", key: KeyedOf(typeGreeter, "fr"), code: ErrCodeMissingKeyedBinding},
		{name: "two bindings", key: KeyOf(typeC1), code: ErrCodeAmbiguousBinding},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := c.Resolve(context.Background(), tt.key)
				require.Error(t, err)

				var e *Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.code, e.Code)
				assert.Equal(t, tt.key.String(), e.Service)
			},
		)
	}
}

func TestResolve_EmptyStringKeyIsDistinct(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	describeGreeters(t, c)
	bindKeyed(t, c, typeGreeter, "", typeFrench)

	_, err := c.Resolve(context.Background(), KeyOf(typeGreeter))
	assert.True(t, HasCode(err, ErrCodeMissingKeyedBinding))

	g, err := c.Resolve(context.Background(), KeyedOf(typeGreeter, ""))
	require.NoError(t, err)
	assert.Equal(t, "bonjour", g.(greeter).Greet())
}

func TestResolve_Collections(t *testing.T) {
	t.Parallel()

	t.Run(
		"registration order", func(t *testing.T) {
			t.Parallel()

			c := newTestContainer()
			describeGreeters(t, c)
			bindType(t, c, typeGreeter, typeFrench, lifetime.Transient)
			bindType(t, c, typeGreeter, typeEnglish, lifetime.Transient)
			bindType(t, c, typeChorus, typeChorus, lifetime.Transient)

			v, err := c.Resolve(context.Background(), KeyOf(typeChorus))
			require.NoError(t, err)

			voices := v.(*chorus).voices
			require.Len(t, voices, 2)
			assert.Equal(t, "bonjour", voices[0].Greet())
			assert.Equal(t, "hello", voices[1].Greet())
		},
	)

	t.Run(
		"empty collection", func(t *testing.T) {
			t.Parallel()

			c := newTestContainer()
			describeGreeters(t, c)
			bindType(t, c, typeChorus, typeChorus, lifetime.Transient)

			v, err := c.Resolve(context.Background(), KeyOf(typeChorus))
			require.NoError(t, err)
			assert.NotNil(t, v.(*chorus).voices)
			assert.Empty(t, v.(*chorus).voices)
		},
	)

	t.Run(
		"resolve all", func(t *testing.T) {
			t.Parallel()

			c := newTestContainer()
			describeGreeters(t, c)
			bindType(t, c, typeGreeter, typeEnglish, lifetime.Transient)
			bindKeyed(t, c, typeGreeter, "fr", typeFrench)
			bindType(t, c, typeGreeter, typeFrench, lifetime.Transient)

			all, err := c.ResolveAll(context.Background(), KeyOf(typeGreeter))
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "hello", all[0].(greeter).Greet())
			assert.Equal(t, "bonjour", all[1].(greeter).Greet())

			none, err := c.ResolveAll(context.Background(), KeyedOf(typeGreeter, "de"))
			require.NoError(t, err)
			assert.Empty(t, none)
		},
	)
}

func TestResolve_CircularDependency(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	require.NoError(t, c.Describe(typeCycleA, ctorOf(t, "newA", func(b *cycleB) *cycleA { return &cycleA{b: b} })))
	require.NoError(t, c.Describe(typeCycleB, ctorOf(t, "newB", func(a *cycleA) *cycleB { return &cycleB{a: a} })))
	bindType(t, c, typeCycleA, typeCycleA, lifetime.Transient)
	bindType(t, c, typeCycleB, typeCycleB, lifetime.Transient)

	_, err := c.Resolve(context.Background(), KeyOf(typeCycleA))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrCodeCircularDependency, e.Code)

	a, b := KeyOf(typeCycleA).String(), KeyOf(typeCycleB).String()
	assert.Equal(t, []string{a, b, a}, e.Stack)
}

func TestResolve_CircularDependencyThroughFactory(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	require.NoError(t, c.Describe(typeCycleA, ctorOf(t, "newA", func(b *cycleB) *cycleA { return &cycleA{b: b} })))
	_, err := c.Register(Binding{
		Service: KeyOf(typeCycleB),
		Factory: func(ctx context.Context, r Resolver) (any, error) {
			a, err := r.Resolve(ctx, KeyOf(typeCycleA))
			if err != nil {
				return nil, err
			}
			return &cycleB{a: a.(*cycleA)}, nil
		},
		Lifetime: lifetime.Singleton,
	})
	require.NoError(t, err)
	bindType(t, c, typeCycleA, typeCycleA, lifetime.Singleton)

	_, err = c.Resolve(context.Background(), KeyOf(typeCycleB))
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeCircularDependency))
	assert.False(t, HasCode(err, ErrCodeFactoryFailed), "resolution errors propagate unwrapped")
	assert.Equal(t, 0, c.Instantiated())
}

func TestResolve_ErrorCarriesStack(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	require.NoError(t, c.Describe(typeCycleA, ctorOf(t, "newA", func(b *cycleB) *cycleA { return &cycleA{b: b} })))
	_, err := c.Register(Binding{
		Service: KeyOf(typeCycleB),
		Factory: func(ctx context.Context, r Resolver) (any, error) {
			_, err := r.Resolve(ctx, KeyOf(typeC1))
			return nil, err
		},
	})
	require.NoError(t, err)
	bindType(t, c, typeCycleA, typeCycleA, lifetime.Transient)

	_, err = c.Resolve(context.Background(), KeyOf(typeCycleA))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrCodeServiceNotFound, e.Code)
	assert.Equal(t, []string{KeyOf(typeCycleA).String(), KeyOf(typeCycleB).String()}, e.Stack)
	assert.Contains(t, err.Error(), "while resolving")
}

func TestResolve_Lifetimes(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	describeLeaves(t, c)
	bindType(t, c, typeC1, typeC1, lifetime.Singleton)
	bindType(t, c, typeC2, typeC2, lifetime.Transient)
	bindType(t, c, typeBuilt, typeBuilt, lifetime.Transient)
	require.NoError(t, c.Describe(typeBuilt, ctorOf(t, "pair", func(c1 *C1, c2 *C2) *built {
		return &built{c1: c1, c2: c2}
	})))

	direct, err := c.Resolve(context.Background(), KeyOf(typeC1))
	require.NoError(t, err)

	first, err := resolveBuilt(t, c)
	require.NoError(t, err)
	second, err := resolveBuilt(t, c)
	require.NoError(t, err)

	assert.Same(t, direct, first.c1)
	assert.Same(t, first.c1, second.c1)
	assert.NotSame(t, first.c2, second.c2)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, c.Instantiated())
}

func TestResolve_SingletonPerBinding(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	describeGreeters(t, c)
	en := bindType(t, c, typeGreeter, typeEnglish, lifetime.Singleton)
	bindKeyed(t, c, typeGreeter, "en", typeEnglish)

	_, ok := c.Instance(en)
	assert.False(t, ok)

	_, err := c.Resolve(context.Background(), KeyOf(typeGreeter))
	require.NoError(t, err)

	_, ok = c.Instance(en)
	assert.True(t, ok)
}

func TestResolve_FactoryFailed(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var calls atomic.Int32

	c := newTestContainer()
	require.NoError(t, c.Describe(typeC1, ctorOf(t, "flaky", func() (*C1, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return &C1{id: 7}, nil
	})))
	bindType(t, c, typeC1, typeC1, lifetime.Singleton)

	_, err := c.Resolve(context.Background(), KeyOf(typeC1))
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeFactoryFailed))
	assert.ErrorIs(t, err, boom)

	v, err := c.Resolve(context.Background(), KeyOf(typeC1))
	require.NoError(t, err, "a failed singleton is not cached")
	assert.Equal(t, 7, v.(*C1).id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestResolve_FactoryTypeMismatch(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	_, err := c.Register(Binding{
		Service: KeyOf(typeC1),
		Factory: func(context.Context, Resolver) (any, error) { return &C2{}, nil },
	})
	require.NoError(t, err)

	_, err = c.Resolve(context.Background(), KeyOf(typeC1))
	assert.True(t, HasCode(err, ErrCodeTypeMismatch))
}

func TestResolve_ContextCanceled(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	describeLeaves(t, c)
	bindType(t, c, typeC1, typeC1, lifetime.Transient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Resolve(ctx, KeyOf(typeC1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_ConcurrentSingleton(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestContainer()
	require.NoError(t, c.Describe(typeC1, ctorOf(t, "counted", func() *C1 {
		return &C1{id: int(calls.Add(1))}
	})))
	bindType(t, c, typeC1, typeC1, lifetime.Singleton)

	const workers = 64
	results := make([]any, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Resolve(context.Background(), KeyOf(typeC1))
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// gatedFactory builds a singleton that resolves dep only after both sides of
// the pair have started building.
func gatedFactory(started *sync.WaitGroup, gate <-chan struct{}, dep ServiceKey) FactoryFunc {
	var once sync.Once
	return func(ctx context.Context, r Resolver) (any, error) {
		once.Do(started.Done)
		<-gate
		return r.Resolve(ctx, dep)
	}
}

func TestResolve_ConcurrentSingletonCycle(t *testing.T) {
	t.Parallel()

	var started sync.WaitGroup
	started.Add(2)
	gate := make(chan struct{})

	c := newTestContainer()
	for _, b := range []Binding{
		{Service: KeyOf(typeCycleA), Factory: gatedFactory(&started, gate, KeyOf(typeCycleB)), Lifetime: lifetime.Singleton},
		{Service: KeyOf(typeCycleB), Factory: gatedFactory(&started, gate, KeyOf(typeCycleA)), Lifetime: lifetime.Singleton},
	} {
		_, err := c.Register(b)
		require.NoError(t, err)
	}

	errs := make(chan error, 2)
	for _, key := range []ServiceKey{KeyOf(typeCycleA), KeyOf(typeCycleB)} {
		key := key
		go func() {
			_, err := c.Resolve(context.Background(), key)
			errs <- err
		}()
	}

	started.Wait()
	close(gate)

	for n := 0; n < 2; n++ {
		select {
		case err := <-errs:
			require.Error(t, err)
			assert.True(t, HasCode(err, ErrCodeCircularDependency), "got %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent resolution of a singleton cycle did not return")
		}
	}
	assert.Equal(t, 0, c.Instantiated())
}

func TestResolve_ConcurrentSingletonGraph(t *testing.T) {
	t.Parallel()

	c := newTestContainer()
	var calls atomic.Int32
	require.NoError(t, c.Describe(typeC1, ctorOf(t, "NewC1", func() *C1 {
		calls.Add(1)
		return &C1{}
	})))
	require.NoError(t, c.Describe(typeC2, ctorOf(t, "NewC2", func(c1 *C1) *C2 { return &C2{id: 2} })))
	require.NoError(t, c.Describe(typeBuilt, ctorOf(t, "pair", func(c1 *C1, c2 *C2) *built {
		return &built{c1: c1, c2: c2}
	})))
	bindType(t, c, typeC1, typeC1, lifetime.Singleton)
	bindType(t, c, typeC2, typeC2, lifetime.Singleton)
	bindType(t, c, typeBuilt, typeBuilt, lifetime.Singleton)
	c.Freeze()

	keys := []ServiceKey{KeyOf(typeBuilt), KeyOf(typeC2), KeyOf(typeC1)}
	results := make([]any, 60)

	var wg sync.WaitGroup
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Resolve(context.Background(), keys[i%len(keys)])
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	root := results[0].(*built)
	assert.Same(t, root, results[3])
	assert.Same(t, root.c2, results[1])
	assert.Same(t, root.c1, results[2])
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 3, c.Instantiated())
}

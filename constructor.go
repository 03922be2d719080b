package stiletto

import (
	reflectPkg "reflect"
	"runtime"
	"strings"

	"github.com/danpasecinic/stiletto/internal/container"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

type (
	Constructor  = container.Constructor
	Introspector = container.Introspector
)

// CtorSpec is one constructor of a type, as passed to Describe.
type CtorSpec struct {
	fn   any
	opts []CtorOption
}

type CtorOption func(*ctorConfig)

type ctorConfig struct {
	name     string
	inject   bool
	keys     []indexedKey
	defaults []indexedDefault
}

type indexedKey struct {
	index int
	key   string
}

type indexedDefault struct {
	index int
	value any
}

// Ctor wraps a function of the form func(P1, ..., Pn) T or
// func(P1, ..., Pn) (T, error). Slice parameters receive every binding of
// their element type.
func Ctor(fn any, opts ...CtorOption) CtorSpec {
	return CtorSpec{fn: fn, opts: opts}
}

// Inject marks the constructor as the one to use. A type may have at most
// one marked constructor.
func Inject() CtorOption {
	return func(cfg *ctorConfig) {
		cfg.inject = true
	}
}

// Key makes parameter i resolve against the binding registered under key.
func Key(i int, key string) CtorOption {
	return func(cfg *ctorConfig) {
		cfg.keys = append(cfg.keys, indexedKey{index: i, key: key})
	}
}

// Default gives parameter i a value used when nothing is registered for it.
// A nil value means the zero value of the parameter type.
func Default(i int, value any) CtorOption {
	return func(cfg *ctorConfig) {
		cfg.defaults = append(cfg.defaults, indexedDefault{index: i, value: value})
	}
}

func Named(name string) CtorOption {
	return func(cfg *ctorConfig) {
		cfg.name = name
	}
}

func (s CtorSpec) build() (*Constructor, error) {
	cfg := &ctorConfig{name: funcName(s.fn)}
	for _, opt := range s.opts {
		opt(cfg)
	}

	ctor, err := container.NewConstructor(s.fn, cfg.name)
	if err != nil {
		return nil, err
	}
	ctor.Inject = cfg.inject

	for _, k := range cfg.keys {
		if err := ctor.SetKey(k.index, k.key); err != nil {
			return nil, err
		}
	}
	for _, d := range cfg.defaults {
		if err := ctor.SetDefault(d.index, d.value); err != nil {
			return nil, err
		}
	}
	return ctor, nil
}

func funcName(fn any) string {
	v := reflectPkg.ValueOf(fn)
	if v.Kind() != reflectPkg.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	if strings.Contains(name, ".func") {
		return ""
	}
	return name
}

// Describe declares the constructors of T in declaration order. Every
// constructor must return something assignable to T. Calling Describe again
// for the same type appends.
func Describe[T any](c *Container, ctors ...CtorSpec) error {
	t := reflect.TypeOf[T]()

	built := make([]*Constructor, 0, len(ctors))
	for _, cs := range ctors {
		ctor, err := cs.build()
		if err != nil {
			return err
		}
		built = append(built, ctor)
	}

	return c.internal.Describe(t, built...)
}

func MustDescribe[T any](c *Container, ctors ...CtorSpec) {
	if err := Describe[T](c, ctors...); err != nil {
		panic(err)
	}
}

// Constructors returns what the container knows about T's constructors.
func Constructors[T any](c *Container) []Constructor {
	return c.internal.Constructors(reflect.TypeOf[T]())
}

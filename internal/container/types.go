package container

import (
	"context"
	"fmt"
	reflectPkg "reflect"

	"github.com/samber/mo"

	"github.com/danpasecinic/stiletto/internal/lifetime"
	"github.com/danpasecinic/stiletto/internal/reflect"
)

// ServiceKey identifies a service by type and optional key. An absent key is
// distinct from every present key, including the empty string.
type ServiceKey struct {
	Type reflectPkg.Type
	Key  mo.Option[string]
}

func KeyOf(t reflectPkg.Type) ServiceKey {
	return ServiceKey{Type: t, Key: mo.None[string]()}
}

func KeyedOf(t reflectPkg.Type, key string) ServiceKey {
	return ServiceKey{Type: t, Key: mo.Some(key)}
}

func (k ServiceKey) Keyed() bool {
	return k.Key.IsPresent()
}

func (k ServiceKey) Unkeyed() ServiceKey {
	return KeyOf(k.Type)
}

func (k ServiceKey) String() string {
	name := reflect.TypeName(k.Type)
	if key, ok := k.Key.Get(); ok {
		return name + "#" + key
	}
	return name
}

type FactoryFunc func(ctx context.Context, r Resolver) (any, error)

type Resolver interface {
	Resolve(ctx context.Context, key ServiceKey) (any, error)
	ResolveAll(ctx context.Context, key ServiceKey) ([]any, error)
	Has(key ServiceKey) bool
}

// Binding is immutable once the registry has assigned its Index.
type Binding struct {
	Index          uint64
	Service        ServiceKey
	Implementation reflectPkg.Type
	Factory        FactoryFunc
	Lifetime       lifetime.Lifetime
}

func (b *Binding) String() string {
	target := "factory"
	if b.Implementation != nil {
		target = reflect.TypeName(b.Implementation)
	}
	return fmt.Sprintf("%s -> %s (%s, #%d)", b.Service, target, b.Lifetime, b.Index)
}

type Param struct {
	Type       reflectPkg.Type
	Key        mo.Option[string]
	Default    mo.Option[reflectPkg.Value]
	Collection bool
}

// ServiceKey is the key the parameter resolves against. Collection
// parameters resolve against their element type.
func (p Param) ServiceKey() ServiceKey {
	t := p.Type
	if p.Collection {
		t = t.Elem()
	}
	return ServiceKey{Type: t, Key: p.Key}
}

type Constructor struct {
	Name   string
	Params []Param
	Inject bool
	Result reflectPkg.Type

	signature *reflect.Signature
}

func NewConstructor(fn any, name string) (*Constructor, error) {
	sig, err := reflect.Inspect(fn)
	if err != nil {
		return nil, errInvalidConstructor(name, err)
	}

	params := make([]Param, len(sig.In))
	for i, t := range sig.In {
		params[i] = Param{
			Type:       t,
			Key:        mo.None[string](),
			Default:    mo.None[reflectPkg.Value](),
			Collection: reflect.IsCollection(t),
		}
	}

	if name == "" {
		name = sig.Fn.Type().String()
	}

	return &Constructor{
		Name:      name,
		Params:    params,
		Result:    sig.Out,
		signature: sig,
	}, nil
}

func (c *Constructor) Invoke(args []reflectPkg.Value) (any, error) {
	return c.signature.Call(args)
}

// SetKey marks parameter i as keyed.
func (c *Constructor) SetKey(i int, key string) error {
	if i < 0 || i >= len(c.Params) {
		return errInvalidConstructor(c.Name, fmt.Errorf("parameter index %d out of range", i))
	}
	c.Params[i].Key = mo.Some(key)
	return nil
}

// SetDefault gives parameter i a default value. A nil value means the zero
// value of the parameter type.
func (c *Constructor) SetDefault(i int, value any) error {
	if i < 0 || i >= len(c.Params) {
		return errInvalidConstructor(c.Name, fmt.Errorf("parameter index %d out of range", i))
	}

	p := &c.Params[i]
	if value == nil && !reflect.IsNillable(p.Type) {
		p.Default = mo.Some(reflectPkg.Zero(p.Type))
		return nil
	}

	v, err := reflect.ValueFor(p.Type, value)
	if err != nil {
		return errInvalidConstructor(c.Name, fmt.Errorf("default for parameter %d: %w", i, err))
	}
	p.Default = mo.Some(v)
	return nil
}

func (c *Constructor) String() string {
	return c.Name
}

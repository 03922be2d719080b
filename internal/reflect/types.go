package reflect

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

var typeNameCache sync.Map

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}

	name := buildTypeName(t)
	typeNameCache.Store(t, name)
	return name
}

func buildTypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeName(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeName(t.Key()) + "]" + buildTypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeName(t.Elem())
		default:
			return "chan " + buildTypeName(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		if t.Name() == "" {
			return t.String()
		}
		return t.Name()
	}
}

func IsCollection(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Slice
}

func IsNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Signature describes a constructor function: func(P1..Pn) T or func(P1..Pn) (T, error).
type Signature struct {
	Fn           reflect.Value
	In           []reflect.Type
	Out          reflect.Type
	ReturnsError bool
}

var (
	ErrNotFunc      = errors.New("constructor must be a function")
	ErrBadResults   = errors.New("constructor must return T or (T, error)")
	ErrVariadicFunc = errors.New("variadic constructors are not supported")
)

func Inspect(fn any) (*Signature, error) {
	if fn == nil {
		return nil, ErrNotFunc
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrNotFunc, t)
	}
	if v.IsNil() {
		return nil, ErrNotFunc
	}
	if t.IsVariadic() {
		return nil, ErrVariadicFunc
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result is %s", ErrBadResults, t.Out(1))
		}
	default:
		return nil, fmt.Errorf("%w: got %d results", ErrBadResults, t.NumOut())
	}

	in := make([]reflect.Type, t.NumIn())
	for i := range in {
		in[i] = t.In(i)
	}

	return &Signature{
		Fn:           v,
		In:           in,
		Out:          t.Out(0),
		ReturnsError: t.NumOut() == 2,
	}, nil
}

// Call invokes the function and unpacks its (T, error) results.
func (s *Signature) Call(args []reflect.Value) (any, error) {
	results := s.Fn.Call(args)
	if s.ReturnsError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// ValueFor converts an instance into a value usable as an argument of type t.
// A nil instance yields the zero value of t.
func ValueFor(t reflect.Type, instance any) (reflect.Value, error) {
	if instance == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(instance)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", rv.Type(), t)
	}

	out := reflect.New(t).Elem()
	out.Set(rv)
	return out, nil
}

// SliceOf builds a []E from resolved instances.
func SliceOf(sliceType reflect.Type, instances []any) (reflect.Value, error) {
	out := reflect.MakeSlice(sliceType, len(instances), len(instances))
	elem := sliceType.Elem()
	for i, instance := range instances {
		v, err := ValueFor(elem, instance)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(v)
	}
	return out, nil
}

package reflect

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInterface interface {
	DoSomething()
}

type testStruct struct {
	Name string
}

func (t *testStruct) DoSomething() {}

func TestTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{name: "int", typ: TypeOf[int](), want: "int"},
		{name: "pointer to struct", typ: TypeOf[*testStruct](), want: "*github.com/danpasecinic/stiletto/internal/reflect.testStruct"},
		{name: "slice", typ: TypeOf[[]string](), want: "[]string"},
		{name: "array", typ: TypeOf[[12]int](), want: "[12]int"},
		{name: "map", typ: TypeOf[map[string]int](), want: "map[string]int"},
		{name: "interface", typ: TypeOf[testInterface](), want: "github.com/danpasecinic/stiletto/internal/reflect.testInterface"},
		{name: "context.Context", typ: TypeOf[context.Context](), want: "context.Context"},
		{name: "nil", typ: nil, want: "<nil>"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				assert.Equal(t, tt.want, TypeName(tt.typ))
			},
		)
	}
}

func TestTypeNameUnique(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	types := []reflect.Type{
		TypeOf[int](),
		TypeOf[int32](),
		TypeOf[int64](),
		TypeOf[string](),
		TypeOf[*string](),
		TypeOf[[]string](),
		TypeOf[map[string]int](),
		TypeOf[testStruct](),
		TypeOf[*testStruct](),
	}

	for _, typ := range types {
		name := TypeName(typ)
		assert.False(t, names[name], "duplicate name: %s", name)
		names[name] = true
	}
}

func TestIsCollection(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCollection(TypeOf[[]testInterface]()))
	assert.False(t, IsCollection(TypeOf[[3]int]()))
	assert.False(t, IsCollection(TypeOf[*testStruct]()))
	assert.False(t, IsCollection(nil))
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var nilPtr *testStruct
	var nilSlice []string
	var nilMap map[string]int
	var nilInterface testInterface

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"nil slice", nilSlice, true},
		{"nil map", nilMap, true},
		{"nil interface", nilInterface, true},
		{"non-nil int", 42, false},
		{"non-nil struct", testStruct{}, false},
		{"non-nil pointer", &testStruct{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(
			tt.name, func(t *testing.T) {
				t.Parallel()
				assert.Equal(t, tt.want, IsNil(tt.v))
			},
		)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run(
		"single result", func(t *testing.T) {
			sig, err := Inspect(func(n int, s string) *testStruct { return &testStruct{Name: s} })
			require.NoError(t, err)
			assert.Equal(t, []reflect.Type{TypeOf[int](), TypeOf[string]()}, sig.In)
			assert.Equal(t, TypeOf[*testStruct](), sig.Out)
			assert.False(t, sig.ReturnsError)
		},
	)

	t.Run(
		"value and error", func(t *testing.T) {
			sig, err := Inspect(func() (testInterface, error) { return nil, nil })
			require.NoError(t, err)
			assert.Empty(t, sig.In)
			assert.True(t, sig.ReturnsError)
		},
	)

	t.Run(
		"rejects non functions", func(t *testing.T) {
			_, err := Inspect(42)
			assert.ErrorIs(t, err, ErrNotFunc)

			_, err = Inspect(nil)
			assert.ErrorIs(t, err, ErrNotFunc)

			var fn func() int
			_, err = Inspect(fn)
			assert.ErrorIs(t, err, ErrNotFunc)
		},
	)

	t.Run(
		"rejects bad results", func(t *testing.T) {
			_, err := Inspect(func() {})
			assert.ErrorIs(t, err, ErrBadResults)

			_, err = Inspect(func() (int, string) { return 0, "" })
			assert.ErrorIs(t, err, ErrBadResults)
		},
	)

	t.Run(
		"rejects variadic", func(t *testing.T) {
			_, err := Inspect(func(xs ...int) int { return len(xs) })
			assert.ErrorIs(t, err, ErrVariadicFunc)
		},
	)
}

func TestSignatureCall(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sig, err := Inspect(func(fail bool) (*testStruct, error) {
		if fail {
			return nil, boom
		}
		return &testStruct{Name: "ok"}, nil
	})
	require.NoError(t, err)

	out, err := sig.Call([]reflect.Value{reflect.ValueOf(false)})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.(*testStruct).Name)

	_, err = sig.Call([]reflect.Value{reflect.ValueOf(true)})
	assert.ErrorIs(t, err, boom)
}

func TestValueFor(t *testing.T) {
	t.Parallel()

	v, err := ValueFor(TypeOf[testInterface](), &testStruct{})
	require.NoError(t, err)
	assert.Equal(t, reflect.Interface, v.Kind())

	v, err = ValueFor(TypeOf[*testStruct](), nil)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	_, err = ValueFor(TypeOf[*testStruct](), "nope")
	assert.Error(t, err)
}

func TestSliceOf(t *testing.T) {
	t.Parallel()

	a, b := &testStruct{Name: "a"}, &testStruct{Name: "b"}
	v, err := SliceOf(TypeOf[[]testInterface](), []any{a, b})
	require.NoError(t, err)

	out := v.Interface().([]testInterface)
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Same(t, b, out[1])

	empty, err := SliceOf(TypeOf[[]testInterface](), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.IsNil())
}

func BenchmarkTypeName(b *testing.B) {
	typ := TypeOf[*testStruct]()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = TypeName(typ)
	}
}

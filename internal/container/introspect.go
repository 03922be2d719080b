package container

import (
	"fmt"
	reflectPkg "reflect"
	"sync"

	"github.com/danpasecinic/stiletto/internal/reflect"
)

// Introspector reports the constructors available for an implementation type,
// in declaration order.
type Introspector interface {
	Constructors(t reflectPkg.Type) []Constructor
}

// TypeTable is an Introspector fed by explicit descriptions.
type TypeTable struct {
	mu    sync.RWMutex
	ctors map[reflectPkg.Type][]Constructor
}

func NewTypeTable() *TypeTable {
	return &TypeTable{
		ctors: make(map[reflectPkg.Type][]Constructor),
	}
}

// Describe appends constructors for t. Each constructor must produce a value
// assignable to t.
func (tt *TypeTable) Describe(t reflectPkg.Type, ctors ...*Constructor) error {
	for _, ctor := range ctors {
		if ctor == nil {
			return errInvalidConstructor("<nil>", fmt.Errorf("nil constructor for %s", reflect.TypeName(t)))
		}
		if !ctor.Result.AssignableTo(t) {
			return errInvalidConstructor(
				ctor.Name,
				fmt.Errorf("result %s is not assignable to %s", reflect.TypeName(ctor.Result), reflect.TypeName(t)),
			)
		}
	}

	tt.mu.Lock()
	defer tt.mu.Unlock()

	for _, ctor := range ctors {
		tt.ctors[t] = append(tt.ctors[t], *ctor)
	}
	return nil
}

func (tt *TypeTable) Constructors(t reflectPkg.Type) []Constructor {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	found := tt.ctors[t]
	out := make([]Constructor, len(found))
	copy(out, found)
	return out
}

// chainIntrospector asks each introspector in turn and keeps the first
// non-empty answer.
type chainIntrospector []Introspector

func (ch chainIntrospector) Constructors(t reflectPkg.Type) []Constructor {
	for _, in := range ch {
		if ctors := in.Constructors(t); len(ctors) > 0 {
			return ctors
		}
	}
	return nil
}

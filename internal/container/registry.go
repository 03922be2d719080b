package container

import (
	"fmt"
	reflectPkg "reflect"
	"sync"

	"github.com/danpasecinic/stiletto/internal/reflect"
)

// Registry holds bindings grouped by service key. Bindings under a key keep
// registration order, and every binding gets a container-wide Index starting at 1.
type Registry struct {
	mu       sync.RWMutex
	bindings map[ServiceKey][]*Binding
	byType   map[reflectPkg.Type][]ServiceKey
	all      []*Binding
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[ServiceKey][]*Binding),
		byType:   make(map[reflectPkg.Type][]ServiceKey),
	}
}

func (r *Registry) Register(b Binding) (*Binding, error) {
	if err := checkBinding(&b); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, errRegistryFrozen(b.Service.String())
	}

	b.Index = uint64(len(r.all)) + 1
	entry := &b

	if _, exists := r.bindings[b.Service]; !exists {
		r.byType[b.Service.Type] = append(r.byType[b.Service.Type], b.Service)
	}
	r.bindings[b.Service] = append(r.bindings[b.Service], entry)
	r.all = append(r.all, entry)

	return entry, nil
}

func checkBinding(b *Binding) error {
	if b.Service.Type == nil {
		return errInvalidBinding("", "service type is required")
	}

	service := b.Service.String()
	switch {
	case b.Implementation == nil && b.Factory == nil:
		return errInvalidBinding(service, "binding needs an implementation type or a factory")
	case b.Implementation != nil && b.Factory != nil:
		return errInvalidBinding(service, "binding cannot have both an implementation type and a factory")
	case b.Implementation != nil && !b.Implementation.AssignableTo(b.Service.Type):
		return errInvalidBinding(
			service,
			fmt.Sprintf("%s is not assignable to %s", reflect.TypeName(b.Implementation), service),
		)
	}
	return nil
}

// Lookup returns the bindings registered under exactly key, in registration order.
func (r *Registry) Lookup(key ServiceKey) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := r.bindings[key]
	out := make([]*Binding, len(found))
	copy(out, found)
	return out
}

func (r *Registry) Count(key ServiceKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings[key])
}

func (r *Registry) Has(key ServiceKey) bool {
	return r.Count(key) > 0
}

// KeysOf returns every key registered for t, keyed or not, in first-registration order.
func (r *Registry) KeysOf(t reflectPkg.Type) []ServiceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.byType[t]
	out := make([]ServiceKey, len(keys))
	copy(out, keys)
	return out
}

func (r *Registry) Keys() []ServiceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[ServiceKey]struct{}, len(r.bindings))
	keys := make([]ServiceKey, 0, len(r.bindings))
	for _, b := range r.all {
		if _, ok := seen[b.Service]; ok {
			continue
		}
		seen[b.Service] = struct{}{}
		keys = append(keys, b.Service)
	}
	return keys
}

// All returns every binding in Index order.
func (r *Registry) All() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Binding, len(r.all))
	copy(out, r.all)
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.all)
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

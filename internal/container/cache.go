package container

import (
	"errors"
	"sync"
	"sync/atomic"
)

// errWaitCycle means the entry is being built by a resolution that is itself
// waiting, directly or through others, on the caller.
var errWaitCycle = errors.New("singleton is being built by a resolution that waits on this one")

// instanceCache stores singleton instances by binding index. Creation for one
// binding is serialized while different bindings build in parallel.
type instanceCache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	size    atomic.Int64
}

type cacheEntry struct {
	mu       sync.Mutex
	ready    atomic.Bool
	instance any
	builder  atomic.Pointer[resolution]
}

func newInstanceCache() *instanceCache {
	return &instanceCache{
		entries: make(map[uint64]*cacheEntry),
	}
}

func (c *instanceCache) entry(index uint64) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[index]
	if !ok {
		e = &cacheEntry{}
		c.entries[index] = e
	}
	return e
}

func (c *instanceCache) Get(index uint64) (any, bool) {
	c.mu.Lock()
	e, ok := c.entries[index]
	c.mu.Unlock()

	if !ok || !e.ready.Load() {
		return nil, false
	}
	return e.instance, true
}

// GetOrCreate returns the cached instance for index, calling create at most
// once across goroutines. A failed create stores nothing, so a later call
// retries. created reports whether this call produced the instance.
//
// owner is recorded as the entry's builder while create runs. Before blocking
// on an entry another resolution is building, GetOrCreate follows the
// waits-for chain from that builder and returns errWaitCycle if it leads back
// to owner.
func (c *instanceCache) GetOrCreate(
	index uint64, owner *resolution, create func() (any, error),
) (instance any, created bool, err error) {
	e := c.entry(index)
	if e.ready.Load() {
		return e.instance, false, nil
	}

	if !e.mu.TryLock() {
		owner.waiting.Store(e)
		if owner.reachableFrom(e) {
			owner.waiting.Store(nil)
			return nil, false, errWaitCycle
		}
		e.mu.Lock()
		owner.waiting.Store(nil)
	}
	defer e.mu.Unlock()

	if e.ready.Load() {
		return e.instance, false, nil
	}

	e.builder.Store(owner)
	defer e.builder.Store(nil)

	instance, err = create()
	if err != nil {
		return nil, false, err
	}

	e.instance = instance
	e.ready.Store(true)
	c.size.Add(1)
	return instance, true, nil
}

// Len reports how many instances have been created.
func (c *instanceCache) Len() int {
	return int(c.size.Load())
}

// reachableFrom reports whether the builder of e, or any resolution it is
// transitively waiting on, is r.
func (r *resolution) reachableFrom(e *cacheEntry) bool {
	seen := make(map[*resolution]struct{})
	for e != nil {
		b := e.builder.Load()
		if b == nil {
			return false
		}
		if b == r {
			return true
		}
		if _, ok := seen[b]; ok {
			return false
		}
		seen[b] = struct{}{}
		e = b.waiting.Load()
	}
	return false
}

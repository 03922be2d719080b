package graph

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Graph is a directed dependency graph over service ids. Node order follows
// first insertion so traversals are deterministic.
type Graph struct {
	mu    sync.RWMutex
	order []string
	edges map[string][]string
}

func New() *Graph {
	return &Graph{
		edges: make(map[string][]string),
	}
}

// AddNode adds id, merging dependencies into any edges it already has.
func (g *Graph) AddNode(id string, dependencies []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, exists := g.edges[id]
	if !exists {
		g.order = append(g.order, id)
	}
	g.edges[id] = lo.Uniq(append(slices.Clone(existing), dependencies...))
}

func (g *Graph) GetDependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, exists := g.edges[id]
	if !exists {
		return nil
	}
	return slices.Clone(deps)
}

func (g *Graph) GetDependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return lo.Filter(g.order, func(node string, _ int) bool {
		return slices.Contains(g.edges[node], id)
	})
}

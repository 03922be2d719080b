package container

import (
	"context"
	"errors"
	"time"

	"github.com/danpasecinic/stiletto/internal/graph"
	"github.com/danpasecinic/stiletto/internal/lifetime"
)

// Plan is the static view of how every registered binding would be built.
type Plan struct {
	Graph *graph.Graph
	// Keys maps graph node ids back to service keys.
	Keys map[string]ServiceKey
	// Selected holds the chosen constructor per implementation binding index.
	Selected map[uint64]*Constructor
	Errors   []error
}

// Plan runs constructor selection for every implementation binding and
// records the edges between services. Factory bindings are opaque and have no edges.
func (c *Container) Plan() *Plan {
	p := &Plan{
		Graph:    graph.New(),
		Keys:     make(map[string]ServiceKey),
		Selected: make(map[uint64]*Constructor),
	}

	for _, b := range c.registry.All() {
		node := b.Service.String()
		p.Keys[node] = b.Service

		if b.Implementation == nil {
			p.Graph.AddNode(node, nil)
			continue
		}

		ctor, err := c.SelectConstructor(b.Implementation)
		if err != nil {
			p.Graph.AddNode(node, nil)
			p.Errors = append(p.Errors, err)
			continue
		}
		p.Selected[b.Index] = ctor

		var deps []string
		for i, param := range ctor.Params {
			key := param.ServiceKey()
			count := c.registry.Count(key)
			if count == 0 {
				continue
			}
			if count > 1 && !param.Collection {
				p.Errors = append(p.Errors, errUnresolvableParam(
					ctor, i, errAmbiguousBinding(key, c.registry.Lookup(key)),
				))
				continue
			}
			deps = append(deps, key.String())
		}
		p.Graph.AddNode(node, deps)
	}

	return p
}

// Validate reports every problem that would surface while resolving the
// registered bindings, without building anything.
func (c *Container) Validate() error {
	return c.Plan().Err()
}

// Err joins selection errors with one circular dependency error per cycle.
func (p *Plan) Err() error {
	errs := append([]error{}, p.Errors...)

	for _, cycle := range p.Graph.CyclePaths() {
		errs = append(errs, errCircularDependency(cycle))
	}

	return errors.Join(errs...)
}

// WarmUp builds every singleton, dependencies first.
func (c *Container) WarmUp(ctx context.Context) error {
	start := time.Now()
	plan := c.Plan()
	if err := plan.Err(); err != nil {
		return err
	}

	order, err := plan.Graph.TopologicalSort()
	if err != nil {
		return err
	}

	var built int
	for _, node := range order {
		for _, b := range c.registry.Lookup(plan.Keys[node]) {
			if b.Lifetime != lifetime.Singleton {
				continue
			}
			if _, err := c.resolveBinding(ctx, &resolution{}, b); err != nil {
				return err
			}
			built++
		}
	}

	c.logger.Debug().
		Int("singletons", built).
		Dur("duration", time.Since(start)).
		Msg("container warmed up")
	return nil
}

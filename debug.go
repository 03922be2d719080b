package stiletto

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/danpasecinic/stiletto/internal/container"
)

type GraphInfo struct {
	Services []ServiceInfo
	// Instantiated counts singletons built so far.
	Instantiated int
}

type ServiceInfo struct {
	Key          string
	Lifetime     string
	Bindings     int
	Constructors []string
	Dependencies []string
	Dependents   []string
	Instantiated bool
}

// Graph describes every service key, sorted by key. Dependencies are the
// parameter keys of the constructors that would be selected right now.
func (c *Container) Graph() GraphInfo {
	plan := c.internal.Plan()

	keys := lo.Map(c.internal.Keys(), func(k ServiceKey, _ int) string { return k.String() })
	slices.Sort(keys)

	services := make([]ServiceInfo, 0, len(keys))
	for _, key := range keys {
		bindings := c.internal.Lookup(plan.Keys[key])

		services = append(
			services, ServiceInfo{
				Key:          key,
				Lifetime:     lifetimeOf(bindings),
				Bindings:     len(bindings),
				Constructors: lo.Uniq(lo.Map(bindings, func(b *container.Binding, _ int) string {
					if b.Factory != nil {
						return "factory"
					}
					if ctor, ok := plan.Selected[b.Index]; ok {
						return ctor.Name
					}
					return "?"
				})),
				Dependencies: plan.Graph.GetDependencies(key),
				Dependents:   plan.Graph.GetDependents(key),
				Instantiated: lo.SomeBy(bindings, func(b *container.Binding) bool {
					_, ok := c.internal.Instance(b)
					return ok
				}),
			},
		)
	}

	return GraphInfo{Services: services, Instantiated: c.internal.Instantiated()}
}

func lifetimeOf(bindings []*container.Binding) string {
	lifetimes := lo.Uniq(lo.Map(bindings, func(b *container.Binding, _ int) Lifetime { return b.Lifetime }))
	if len(lifetimes) == 1 {
		return lifetimes[0].String()
	}
	return "mixed"
}

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Services) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, svc := range info.Services {
		status := "○"
		if svc.Instantiated {
			status = "●"
		}

		label := fmt.Sprintf("%s %s [%s]", status, svc.Key, svc.Lifetime)
		if svc.Bindings > 1 {
			label += fmt.Sprintf(" x%d", svc.Bindings)
		}

		if len(svc.Dependencies) == 0 {
			_, _ = fmt.Fprintln(w, label)
		} else {
			_, _ = fmt.Fprintf(w, "%s ← %s\n", label, strings.Join(svc.Dependencies, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, svc := range info.Services {
		label := escapeLabel(svc.Key)
		style := ""
		if svc.Instantiated {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", svc.Key, label, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, svc := range info.Services {
		for _, dep := range svc.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", svc.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}

package container

import (
	"errors"
	reflectPkg "reflect"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/danpasecinic/stiletto/internal/reflect"
)

// TieBreak decides what happens when two eligible constructors rank equally.
type TieBreak int

const (
	// TieBreakError fails selection with ErrCodeConstructorRankingTie.
	TieBreakError TieBreak = iota
	// TieBreakDeclarationOrder picks the first declared constructor and logs a warning.
	TieBreakDeclarationOrder
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakError:
		return "error"
	case TieBreakDeclarationOrder:
		return "declaration-order"
	default:
		return "unknown"
	}
}

type Selector struct {
	registry *Registry
	tieBreak TieBreak
	logger   zerolog.Logger
}

func NewSelector(registry *Registry, tieBreak TieBreak, logger zerolog.Logger) *Selector {
	return &Selector{
		registry: registry,
		tieBreak: tieBreak,
		logger:   logger,
	}
}

type candidate struct {
	ctor     *Constructor
	required int
	total    int
	reasons  []error
}

func (c candidate) eligible() bool {
	return len(c.reasons) == 0
}

func (c candidate) outranks(o candidate) bool {
	if c.required != o.required {
		return c.required > o.required
	}
	return c.total > o.total
}

func (c candidate) ranksWith(o candidate) bool {
	return c.required == o.required && c.total == o.total
}

// Select picks the constructor used to build impl.
//
// A single constructor marked for injection wins outright but must still be
// resolvable. Otherwise every constructor whose parameters are all resolvable
// is ranked by required parameter count, then by total parameter count.
func (s *Selector) Select(impl reflectPkg.Type, ctors []Constructor) (*Constructor, error) {
	name := reflect.TypeName(impl)
	if len(ctors) == 0 {
		return nil, errNoUsableConstructor(name, nil)
	}

	marked := lo.Filter(ctors, func(c Constructor, _ int) bool { return c.Inject })
	switch len(marked) {
	case 0:
	case 1:
		c := s.evaluate(&marked[0])
		if !c.eligible() {
			return nil, errNoUsableConstructor(name, errors.Join(c.reasons...))
		}
		return c.ctor, nil
	default:
		return nil, errAmbiguousConstructorMarker(name, marked)
	}

	candidates := make([]candidate, len(ctors))
	for i := range ctors {
		candidates[i] = s.evaluate(&ctors[i])
	}

	eligible := lo.Filter(candidates, func(c candidate, _ int) bool { return c.eligible() })
	if len(eligible) == 0 {
		reasons := lo.FlatMap(candidates, func(c candidate, _ int) []error { return c.reasons })
		return nil, errNoUsableConstructor(name, errors.Join(reasons...))
	}

	best := lo.MaxBy(eligible, func(a, b candidate) bool { return a.outranks(b) })
	tied := lo.Filter(eligible, func(c candidate, _ int) bool { return c.ranksWith(best) })
	if len(tied) > 1 {
		tiedCtors := lo.Map(tied, func(c candidate, _ int) *Constructor { return c.ctor })
		if s.tieBreak == TieBreakError {
			return nil, errConstructorRankingTie(name, tiedCtors)
		}
		s.logger.Warn().
			Str("type", name).
			Strs("constructors", lo.Map(tiedCtors, func(c *Constructor, _ int) string { return c.Name })).
			Str("selected", best.ctor.Name).
			Msg("constructor ranking tie broken by declaration order")
	}

	return best.ctor, nil
}

// evaluate checks that every parameter of ctor is resolvable and computes its rank.
func (s *Selector) evaluate(ctor *Constructor) candidate {
	c := candidate{ctor: ctor, total: len(ctor.Params)}

	for i, p := range ctor.Params {
		if p.Default.IsPresent() {
			continue
		}
		c.required++
		if p.Collection {
			continue
		}
		key := p.ServiceKey()
		if s.registry.Has(key) {
			continue
		}
		c.reasons = append(c.reasons, errUnresolvableParam(ctor, i, s.Unbound(key)))
	}

	return c
}

// Unbound builds the error for a key with no bindings. A keyed request, or an
// unkeyed request for a type registered only under keys, reports
// ErrCodeMissingKeyedBinding. Anything else is ErrCodeServiceNotFound.
func (s *Selector) Unbound(key ServiceKey) *Error {
	available := lo.Filter(s.registry.KeysOf(key.Type), func(k ServiceKey, _ int) bool { return k != key })
	if key.Keyed() || len(available) > 0 {
		return errMissingKeyedBinding(key, available)
	}
	return errServiceNotFound(key)
}

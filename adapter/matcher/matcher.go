// Package matcher contains the default [domain.Matcher] implementation.
package matcher

import (
	"fmt"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Matcher implements [domain.Matcher]. Missing fields are treated as nil.
// Ordering operators only match values of the same type bracket, so
// {price: {gt: "10"}} never matches a numeric price.
type Matcher struct {
	comparer domain.Comparer
}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher(opts ...Option) domain.Matcher {
	m := Matcher{}
	for _, opt := range opts {
		opt(&m)
	}
	if m.comparer == nil {
		m.comparer = comparer.NewComparer()
	}
	return &m
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(doc domain.Document, filter domain.Filter) (bool, error) {
	for _, p := range filter {
		ok, err := m.matchPredicate(doc[p.Field], p)
		if err != nil {
			return false, fmt.Errorf("matching %q: %w", p.Field, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (m *Matcher) matchPredicate(value any, p domain.Predicate) (bool, error) {
	switch p.Op {
	case domain.OpEq:
		return m.equal(value, p.Value)
	case domain.OpNe:
		eq, err := m.equal(value, p.Value)
		return !eq, err
	case domain.OpIn:
		values, ok := p.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%w: in requires a list, got %T", domain.ErrInvalidSpec, p.Value)
		}
		for _, v := range values {
			eq, err := m.equal(value, v)
			if err != nil || eq {
				return eq, err
			}
		}
		return false, nil
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		if !m.comparer.Comparable(value, p.Value) {
			return false, nil
		}
		comp, err := m.comparer.Compare(value, p.Value)
		if err != nil {
			return false, err
		}
		switch p.Op {
		case domain.OpGt:
			return comp > 0, nil
		case domain.OpGte:
			return comp >= 0, nil
		case domain.OpLt:
			return comp < 0, nil
		default:
			return comp <= 0, nil
		}
	}
	return false, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidSpec, p.Op)
}

func (m *Matcher) equal(a, b any) (bool, error) {
	comp, err := m.comparer.Compare(a, b)
	if err != nil {
		return false, err
	}
	return comp == 0, nil
}

package pipeline

import (
	"fmt"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

type accumulator interface {
	add(any) error
	result() any
}

func newAccumulator(op domain.AccumulatorOp, cmpr domain.Comparer) (accumulator, error) {
	switch op {
	case domain.AccSum:
		return &sumAcc{}, nil
	case domain.AccAvg:
		return &avgAcc{}, nil
	case domain.AccMin:
		return &extremeAcc{cmpr: cmpr, want: -1}, nil
	case domain.AccMax:
		return &extremeAcc{cmpr: cmpr, want: 1}, nil
	case domain.AccPush:
		return &pushAcc{values: make([]any, 0)}, nil
	}
	return nil, fmt.Errorf("%w: unknown accumulator %q", domain.ErrInvalidPipeline, op)
}

// sumAcc ignores non-numeric values. The sum stays an integer while every
// value is one.
type sumAcc struct {
	i       int64
	f       float64
	isFloat bool
}

func (s *sumAcc) add(v any) error {
	n, ok := toNumber(v)
	if !ok {
		return nil
	}
	if n.isInt && !s.isFloat {
		s.i += n.i
		return nil
	}
	if !s.isFloat {
		s.f = float64(s.i)
		s.isFloat = true
	}
	s.f += n.float()
	return nil
}

func (s *sumAcc) result() any {
	if s.isFloat {
		return s.f
	}
	return s.i
}

// avgAcc ignores non-numeric values. With no numeric value the average is
// nil.
type avgAcc struct {
	sum   float64
	count int64
}

func (a *avgAcc) add(v any) error {
	n, ok := toNumber(v)
	if !ok {
		return nil
	}
	a.sum += n.float()
	a.count++
	return nil
}

func (a *avgAcc) result() any {
	if a.count == 0 {
		return nil
	}
	return a.sum / float64(a.count)
}

// extremeAcc keeps the smallest (want -1) or largest (want 1) non-nil value.
type extremeAcc struct {
	cmpr  domain.Comparer
	want  int
	value any
}

func (e *extremeAcc) add(v any) error {
	if v == nil {
		return nil
	}
	if e.value == nil {
		e.value = v
		return nil
	}
	comp, err := e.cmpr.Compare(v, e.value)
	if err != nil {
		return err
	}
	if comp == e.want {
		e.value = v
	}
	return nil
}

func (e *extremeAcc) result() any {
	return e.value
}

type pushAcc struct {
	values []any
}

func (p *pushAcc) add(v any) error {
	p.values = append(p.values, v)
	return nil
}

func (p *pushAcc) result() any {
	return p.values
}

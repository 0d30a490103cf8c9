package pipeline

import (
	"fmt"
	"math"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// ErrNotNumeric is returned when an arithmetic expression gets a value that
// is neither a number nor nil.
var ErrNotNumeric = fmt.Errorf("%w: arithmetic on a non-numeric value", domain.ErrInvalidPipeline)

// ErrDivideByZero is returned when a [domain.Divide] has a zero divisor.
var ErrDivideByZero = fmt.Errorf("%w: division by zero", domain.ErrInvalidPipeline)

// Eval evaluates e against doc. A missing field evaluates to nil, and
// arithmetic with a nil operand is nil.
func (a *Aggregator) Eval(doc domain.Document, e domain.Expr) (any, error) {
	switch x := e.(type) {
	case domain.FieldRef:
		return doc[x.Name], nil
	case domain.Literal:
		return x.Value, nil
	case domain.Divide:
		return a.binary(doc, x.Left, x.Right, divide)
	case domain.Multiply:
		return a.binary(doc, x.Left, x.Right, multiply)
	case domain.Floor:
		return a.unary(doc, x.Value, func(n number) (any, error) {
			if n.isInt {
				return n.i, nil
			}
			return floor(n.f), nil
		})
	case domain.Round:
		if x.Places < 0 {
			return nil, fmt.Errorf("%w: negative round places %d", domain.ErrInvalidPipeline, x.Places)
		}
		return a.unary(doc, x.Value, func(n number) (any, error) {
			if n.isInt {
				return n.i, nil
			}
			return roundHalfEven(n.f, x.Places), nil
		})
	case domain.Object:
		out := make(domain.Document, len(x.Fields))
		if err := a.setFields(out, doc, x.Fields); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown expression %T", domain.ErrInvalidPipeline, e)
}

func (a *Aggregator) unary(doc domain.Document, e domain.Expr, f func(number) (any, error)) (any, error) {
	v, err := a.Eval(doc, e)
	if err != nil || v == nil {
		return nil, err
	}
	n, ok := toNumber(v)
	if !ok {
		return nil, fmt.Errorf("%w: %v (%T)", ErrNotNumeric, v, v)
	}
	return f(n)
}

func (a *Aggregator) binary(doc domain.Document, l, r domain.Expr, f func(number, number) (any, error)) (any, error) {
	lv, err := a.Eval(doc, l)
	if err != nil {
		return nil, err
	}
	rv, err := a.Eval(doc, r)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}
	ln, ok := toNumber(lv)
	if !ok {
		return nil, fmt.Errorf("%w: %v (%T)", ErrNotNumeric, lv, lv)
	}
	rn, ok := toNumber(rv)
	if !ok {
		return nil, fmt.Errorf("%w: %v (%T)", ErrNotNumeric, rv, rv)
	}
	return f(ln, rn)
}

func divide(l, r number) (any, error) {
	if r.float() == 0 {
		return nil, ErrDivideByZero
	}
	return l.float() / r.float(), nil
}

func multiply(l, r number) (any, error) {
	if l.isInt && r.isInt {
		return l.i * r.i, nil
	}
	return l.float() * r.float(), nil
}

// floor returns an int64 when the result fits in one.
func floor(f float64) any {
	res := math.Floor(f)
	if res >= math.MinInt64 && res < math.MaxInt64 {
		return int64(res)
	}
	return res
}

func roundHalfEven(f float64, places int) float64 {
	pow := math.Pow10(places)
	return math.RoundToEven(f*pow) / pow
}

// number is an integer or a float read from a document.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func toNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n), isInt: true}, true
	case int8:
		return number{i: int64(n), isInt: true}, true
	case int16:
		return number{i: int64(n), isInt: true}, true
	case int32:
		return number{i: int64(n), isInt: true}, true
	case int64:
		return number{i: n, isInt: true}, true
	case uint:
		return number{i: int64(n), isInt: true}, true
	case uint8:
		return number{i: int64(n), isInt: true}, true
	case uint16:
		return number{i: int64(n), isInt: true}, true
	case uint32:
		return number{i: int64(n), isInt: true}, true
	case uint64:
		return number{i: int64(n), isInt: true}, true
	case float32:
		return number{f: float64(n)}, true
	case float64:
		return number{f: n}, true
	}
	return number{}, false
}

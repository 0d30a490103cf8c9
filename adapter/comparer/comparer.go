// Package comparer contains the default [domain.Comparer] implementation.
package comparer

import (
	"cmp"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Comparer implements [domain.Comparer]. Values of different types are ordered
// the way a document store orders them: nil, numbers, strings, documents,
// arrays, booleans, dates.
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements [domain.Comparer].
func (c *Comparer) Comparable(a, b any) bool {
	if _, ok := c.asNumber(a); ok {
		_, ok = c.asNumber(b)
		return ok
	}

	equal := false
	switch a.(type) {
	case string:
		_, equal = b.(string)
	case bool:
		_, equal = b.(bool)
	case time.Time:
		_, equal = b.(time.Time)
	}
	return equal
}

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a any, b any) (int, error) {
	ra, rb := c.rank(a), c.rank(b)
	if ra < 0 || rb < 0 {
		return 0, domain.ErrCannotCompare{A: a, B: b}
	}
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}

	switch ra {
	case rankNil:
		return 0, nil
	case rankNumber:
		x, _ := c.asNumber(a)
		y, _ := c.asNumber(b)
		// big.Float keeps float64 and int64 comparisons exact.
		return x.Cmp(y), nil
	case rankString:
		return cmp.Compare(a.(string), b.(string)), nil
	case rankDocument:
		return c.compareDoc(a.(domain.Document), b.(domain.Document))
	case rankArray:
		return c.compareArray(a.([]any), b.([]any))
	case rankBool:
		return c.compareBool(a.(bool), b.(bool)), nil
	default:
		return a.(time.Time).Compare(b.(time.Time)), nil
	}
}

const (
	rankNil = iota
	rankNumber
	rankString
	rankDocument
	rankArray
	rankBool
	rankTime
)

func (c *Comparer) rank(v any) int {
	if v == nil {
		return rankNil
	}
	if _, ok := c.asNumber(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case string:
		return rankString
	case domain.Document:
		return rankDocument
	case []any:
		return rankArray
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	}
	return -1
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func (c *Comparer) compareDoc(a, b domain.Document) (int, error) {
	aKeys := c.sortedKeys(a)
	bKeys := c.sortedKeys(b)

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err := c.Compare(a[aKeys[i]], b[bKeys[i]])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}
	return cmp.Compare(len(aKeys), len(bKeys)), nil
}

func (c *Comparer) sortedKeys(d domain.Document) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		return c.asNumber(float64(n))
	case float64:
		// NaN sorts before every other number.
		if math.IsNaN(n) {
			n = math.Inf(-1)
		}
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}

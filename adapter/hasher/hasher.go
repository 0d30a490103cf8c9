// Package hasher contains a json based implementation of [domain.Hasher]. It
// hashes the values found in documents: numbers, strings, booleans, times,
// nested documents and arrays. Numbers hash by value, so 1 and 1.0 get the
// same hash, and documents hash the same whatever their key order.
package hasher

import (
	"bytes"
	"encoding/json"
	"hash/fnv"
	"math"
	"slices"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Hasher implements [domain.Hasher].
type Hasher struct{}

// NewHasher returns a new implementation of [domain.Hasher].
func NewHasher() domain.Hasher {
	return &Hasher{}
}

// Hash implements [domain.Hasher].
func (h *Hasher) Hash(value any) (uint64, error) {
	b, err := json.Marshal(h.canonicalize(value))
	if err != nil {
		return 0, err
	}

	hasher := fnv.New64a()
	_, _ = hasher.Write(b) // fnv never returns an error
	return hasher.Sum64(), nil
}

func (h *Hasher) canonicalize(a any) any {
	switch t := a.(type) {
	case nil, bool, string:
		return t
	case float64:
		return h.float(t)
	case float32:
		return h.float(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return t
	case time.Time:
		return t.UTC()
	case domain.Document:
		pairs := make(object, 0, len(t))
		for k, v := range t {
			pairs = append(pairs, keyValuePair{key: k, val: h.canonicalize(v)})
		}
		return pairs
	case []any:
		res := make([]any, len(t))
		for n, v := range t {
			res[n] = h.canonicalize(v)
		}
		return res
	}

	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		res := make([]any, v.Len())
		for n := range v.Len() {
			res[n] = h.canonicalize(v.Index(n).Interface())
		}
		return res
	case reflect.Ptr, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return nil
		}
		return v.Pointer()
	}
	return a
}

// float maps the values json cannot encode. NaN hashes as -Inf, as the
// comparer orders it.
func (h *Hasher) float(f float64) any {
	switch {
	case math.IsNaN(f), math.IsInf(f, -1):
		return "-Inf"
	case math.IsInf(f, 1):
		return "+Inf"
	}
	return f
}

type keyValuePair struct {
	key string
	val any
}

type object []keyValuePair

func (o object) MarshalJSON() ([]byte, error) {
	sorted := slices.SortedFunc(slices.Values(o), func(a, b keyValuePair) int {
		return bytes.Compare([]byte(a.key), []byte(b.key))
	})

	buf := bytes.NewBuffer(append(make([]byte, 0, 256), '{'))
	for n, item := range sorted {
		if n > 0 {
			_ = buf.WriteByte(',')
		}
		k, _ := json.Marshal(item.key)
		_, _ = buf.Write(k)
		_ = buf.WriteByte(':')
		v, err := json.Marshal(item.val)
		if err != nil {
			return nil, err
		}
		_, _ = buf.Write(v)
	}
	_ = buf.WriteByte('}')
	return buf.Bytes(), nil
}

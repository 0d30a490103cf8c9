// Package serializer contains the default [domain.Serializer] implementation.
// It renders documents as JSON, whichever backend produced them.
package serializer

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// Serializer implements [domain.Serializer].
type Serializer struct {
	indent string
}

// NewSerializer returns a new implementation of [domain.Serializer].
func NewSerializer(opts ...Option) domain.Serializer {
	var s Serializer
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// Serialize implements [domain.Serializer]. Times are written in RFC 3339
// and non-finite floats as strings, so every document can be written.
func (s *Serializer) Serialize(ctx context.Context, obj any) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	v := s.copyAny(obj)
	if s.indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", s.indent)
}

func (s *Serializer) copyAny(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return s.copyMap(t)
	case bson.M:
		return s.copyMap(t)
	case bson.D:
		return s.copyMap(t.Map())
	case []domain.Document:
		res := make([]any, len(t))
		for n, itm := range t {
			res[n] = s.copyMap(itm)
		}
		return res
	case []any:
		return s.copySlice(t)
	case bson.A:
		return s.copySlice(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
		return t
	default:
		return v
	}
}

func (s *Serializer) copyMap(m map[string]any) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = s.copyAny(v)
	}
	return res
}

func (s *Serializer) copySlice(l []any) []any {
	res := make([]any, len(l))
	for n, itm := range l {
		res[n] = s.copyAny(itm)
	}
	return res
}

// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"
	"maps"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// TagName is the struct tag read when decoding. It is the same tag the mongo
// driver reads, so a single struct works with every backend.
const TagName = "bson"

// Decoder implements [domain.Decoder].
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder].
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return domain.ErrNonPointer
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: TagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

// ToDocument converts a struct, a pointer to struct or a map with string keys
// into a new [domain.Document]. Maps are copied shallowly.
func ToDocument(v any) (domain.Document, error) {
	switch t := v.(type) {
	case nil:
		return nil, domain.ErrTargetNil
	case domain.Document:
		return maps.Clone(t), nil
	}

	value := reflect.ValueNoEscapeOf(v)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, domain.ErrTargetNil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, domain.ErrDecode{Source: v, Target: domain.Document{}}
		}
	default:
		return nil, domain.ErrDecode{Source: v, Target: domain.Document{}}
	}

	doc := make(domain.Document)
	if err := NewDecoder().Decode(v, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Package deserializer contains the default [domain.Deserializer]
// implementation.
package deserializer

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// NewDeserializer returns a new instance of [domain.Deserializer]. A nil
// decoder falls back to the default one.
func NewDeserializer(dec domain.Decoder) domain.Deserializer {
	if dec == nil {
		dec = decoder.NewDecoder()
	}
	return &Deserializer{
		decoder: dec,
	}
}

// Deserializer implements [domain.Deserializer]. It parses one JSON object
// and hands the resulting document to a [domain.Decoder], so targets are
// filled through their bson tags, like every other decode in this module.
type Deserializer struct {
	decoder domain.Decoder
}

// Deserialize implements [domain.Deserializer].
func (d *Deserializer) Deserialize(ctx context.Context, b []byte, target any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if target == nil {
		return domain.ErrTargetNil
	}

	doc := make(domain.Document)
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return err
	}

	if p, ok := target.(*domain.Document); ok {
		*p = doc
		return nil
	}

	return d.decoder.Decode(doc, target)
}

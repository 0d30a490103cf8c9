package validator

import "github.com/vinicius-lino-figueiredo/bookquery/domain"

// WithFields sets the fields a descriptor may address and the kind of value
// each accepts.
func WithFields(f map[string]domain.Kind) Option {
	return func(v *Validator) {
		v.fields = f
	}
}

// Option configures validator behavior through the functional options
// pattern.
type Option func(*Validator)

package seed

import "github.com/vinicius-lino-figueiredo/bookquery/domain"

// WithDeserializer sets the deserializer used for every record.
func WithDeserializer(d domain.Deserializer) Option {
	return func(l *Loader) {
		l.deserializer = d
	}
}

// Option configures the loader through the functional options pattern.
type Option func(*Loader)

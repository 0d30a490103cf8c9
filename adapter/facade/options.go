package facade

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// WithLogger sets the logger dispatches and rejections are reported to, at
// debug level. Defaults to a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		f.log = l
	}
}

// WithValidator sets the validator run before every dispatch.
func WithValidator(v domain.Validator) Option {
	return func(f *Facade) {
		f.validator = v
	}
}

// Option configures the facade through the functional options pattern.
type Option func(*Facade)

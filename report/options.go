package report

import (
	"log/slog"

	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// WithAllowWrites lets mutating reports run.
func WithAllowWrites(allow bool) Option {
	return func(r *Runner) {
		r.allowWrites = allow
	}
}

// WithSerializer sets the serializer each result value is written with.
func WithSerializer(s domain.Serializer) Option {
	return func(r *Runner) {
		r.serializer = s
	}
}

// WithLogger sets the logger progress is reported to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// Option configures the runner through the functional options pattern.
type Option func(*Runner)

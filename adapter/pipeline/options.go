package pipeline

import "github.com/vinicius-lino-figueiredo/bookquery/domain"

// WithComparer sets the comparer used to group documents and to compute min
// and max.
func WithComparer(c domain.Comparer) Option {
	return func(a *Aggregator) {
		a.cmpr = c
	}
}

// WithHasher sets the hasher used to bucket group keys.
func WithHasher(h domain.Hasher) Option {
	return func(a *Aggregator) {
		a.hshr = h
	}
}

// WithQuerier sets the querier used by sort stages.
func WithQuerier(q domain.Querier) Option {
	return func(a *Aggregator) {
		a.qrr = q
	}
}

// Option configures aggregator behavior through the functional options
// pattern.
type Option func(*Aggregator)

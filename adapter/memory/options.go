package memory

import "github.com/vinicius-lino-figueiredo/bookquery/domain"

// WithComparer sets the comparer for value comparison operations.
func WithComparer(c domain.Comparer) Option {
	return func(co *Collection) {
		co.comparer = c
	}
}

// WithQuerier sets the querier used by find, count and update operations.
func WithQuerier(q domain.Querier) Option {
	return func(co *Collection) {
		co.querier = q
	}
}

// WithAggregator sets the aggregator that runs pipelines.
func WithAggregator(a domain.Aggregator) Option {
	return func(co *Collection) {
		co.aggregator = a
	}
}

// WithDecoder sets the decoder used by FindOne and by returned cursors.
func WithDecoder(d domain.Decoder) Option {
	return func(co *Collection) {
		co.decoder = d
	}
}

// WithCursorFactory sets the factory function for creating cursors.
func WithCursorFactory(cf domain.CursorFactory) Option {
	return func(co *Collection) {
		co.cursorFactory = cf
	}
}

// WithIndexFactory sets the factory function for creating indexes.
func WithIndexFactory(i domain.IndexFactory) Option {
	return func(co *Collection) {
		co.indexFactory = i
	}
}

// WithIDGenerator sets the generator for documents inserted without _id.
func WithIDGenerator(i domain.IDGenerator) Option {
	return func(co *Collection) {
		co.idGenerator = i
	}
}

// WithTimeGetter sets the time provider used to time explained queries.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(co *Collection) {
		co.timeGetter = t
	}
}

// Option configures the collection through the functional options pattern.
type Option func(*Collection)

// Package domain contains domain-specific types, interfaces and option types
// for bookquery.
//
// This package defines the query descriptors accepted by the facade, the
// upstream [Collection] interface a store must implement, the interfaces
// implemented by adapters, and functional options for configuring them.
package domain

import (
	"context"
	"iter"
	"time"
)

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts source into target, which must be a pointer.
	Decode(source any, target any) error
}

// Serializer converts values to bytes for output.
type Serializer interface {
	// Serialize converts obj to bytes.
	Serialize(ctx context.Context, obj any) ([]byte, error)
}

// Deserializer converts bytes back to values.
type Deserializer interface {
	// Deserialize decodes b into target, which must be a pointer.
	Deserialize(ctx context.Context, b []byte, target any) error
}

// Hasher hashes values so that values a [Comparer] reports as equal get the
// same hash.
type Hasher interface {
	Hash(value any) (uint64, error)
}

// Comparer provides ordering and comparison operations for different data
// types.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be compared.
	Comparable(any, any) bool
}

// Matcher evaluates whether documents match a [Filter].
type Matcher interface {
	// Match returns true if the document matches every predicate.
	Match(Document, Filter) (bool, error)
}

// Projector shapes documents according to a [Projection].
type Projector interface {
	// Project returns projected copies of the documents.
	Project([]Document, Projection) ([]Document, error)
}

// Querier filters, sorts, paginates and projects a document sequence.
type Querier interface {
	// Query reads data and returns the documents selected by the options.
	Query(data iter.Seq[Document], opts ...QueryOption) ([]Document, error)
}

// Aggregator runs a [Pipeline] over a document sequence.
type Aggregator interface {
	// Aggregate returns the output of the last stage.
	Aggregate(ctx context.Context, docs []Document, pipeline Pipeline) ([]Document, error)
}

// Cursor provides lazy iteration over a result set. It can be consumed only
// once.
type Cursor interface {
	// Scan decodes the current document into target.
	Scan(ctx context.Context, target any) error
	// Next advances the cursor to the next document, returning true if
	// available.
	Next() bool
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources and should be called when done.
	Close() error
}

// Index provides fast document lookups based on field values.
type Index interface {
	// Name returns the index name.
	Name() string
	// Keys returns the key specification of the index.
	Keys() IndexKeys
	// Unique returns true if this is a unique index.
	Unique() bool
	// Insert adds documents to the index.
	Insert(ctx context.Context, docs ...Document) error
	// Remove removes documents from the index.
	Remove(ctx context.Context, docs ...Document) error
	// Update replaces oldDoc with newDoc.
	Update(ctx context.Context, oldDoc, newDoc Document) error
	// GetMatching returns the documents indexed under any of the values.
	GetMatching(values ...any) ([]Document, error)
	// GetBetweenBounds returns documents whose key satisfies every
	// comparison predicate.
	GetBetweenBounds(ctx context.Context, preds ...Predicate) ([]Document, error)
	// GetNumberOfKeys returns the number of unique keys in the index.
	GetNumberOfKeys() int
}

// Collection is the upstream document store the facade dispatches to. Every
// method is one round trip; implementations own locking, isolation and
// timeouts.
type Collection interface {
	Find(ctx context.Context, filter Filter, opts FindOptions) (Cursor, error)
	FindOne(ctx context.Context, filter Filter, target any) (bool, error)
	UpdateOne(ctx context.Context, filter Filter, changes Changes) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
	Aggregate(ctx context.Context, pipeline Pipeline) (Cursor, error)
	CreateIndex(ctx context.Context, keys IndexKeys) (string, error)
	ListIndexes(ctx context.Context) ([]IndexDescriptor, error)
	Explain(ctx context.Context, filter Filter) (ExecutionStats, error)
	InsertMany(ctx context.Context, docs ...any) (InsertResult, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Facade is the typed query surface over a books [Collection]. It validates
// every descriptor locally and then performs exactly one call to the
// collection. It holds no state between calls, so it is safe to use
// concurrently as long as the collection is.
type Facade interface {
	// Find returns a cursor over the documents matching filter. Options
	// control projection, sort and pagination:
	// - [WithFindProjection]
	// - [WithFindSort]
	// - [WithFindPage]
	Find(ctx context.Context, filter Filter, opts ...FindOption) (Cursor, error)

	// FindOne decodes the first matching document, in natural order, into
	// target. It returns false and no error if nothing matches.
	FindOne(ctx context.Context, filter Filter, target any) (bool, error)

	// UpdateOne sets changes on the first matching document. Zero
	// matches is reported through [UpdateResult], not as an error.
	UpdateOne(ctx context.Context, filter Filter, changes Changes) (UpdateResult, error)

	// DeleteOne deletes the first matching document.
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)

	// Aggregate runs pipeline and returns a cursor over its output.
	Aggregate(ctx context.Context, pipeline Pipeline) (Cursor, error)

	// CreateIndex creates an index with the given keys and returns its
	// name. Creating an existing index is a no-op.
	CreateIndex(ctx context.Context, keys IndexKeys) (string, error)

	// ListIndexes lists the indexes of the collection.
	ListIndexes(ctx context.Context) ([]IndexDescriptor, error)

	// Explain returns the store planner statistics for filter.
	Explain(ctx context.Context, filter Filter) (ExecutionStats, error)

	// InsertMany inserts books, which should be [BookRecord] values or
	// documents with the same fields.
	InsertMany(ctx context.Context, books ...any) (InsertResult, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Validator checks descriptors before they are dispatched to a [Collection].
// Every error it returns wraps [ErrInvalidSpec] or [ErrInvalidPipeline].
type Validator interface {
	ValidateFilter(Filter) error
	ValidateFindOptions(FindOptions) error
	ValidateChanges(Changes) error
	ValidatePipeline(Pipeline) error
	ValidateIndexKeys(IndexKeys) error
}

// IDGenerator creates keys for documents inserted without an _id.
type IDGenerator interface {
	GenerateID() (string, error)
}

// TimeGetter provides current time information.
type TimeGetter interface {
	GetTime() time.Time
}

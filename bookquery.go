// Package bookquery provides a typed query surface over a collection of
// books.
//
// Every query is described with plain values ([Filter], [Projection],
// [Sort], [Pipeline]) and validated before it reaches the store, so a
// malformed query never costs a round trip. The same descriptors run against
// a MongoDB collection or an in-memory one; see [NewMemoryFacade] and
// [Connect].
package bookquery

import (
	"context"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/facade"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/memory"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/mongo"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

var (
	// ErrInvalidSpec is returned when a filter, projection, sort, page,
	// index or update is malformed. Nothing is sent to the store.
	ErrInvalidSpec = domain.ErrInvalidSpec
	// ErrInvalidPipeline is returned when an aggregation pipeline is
	// malformed. Nothing is sent to the store.
	ErrInvalidPipeline = domain.ErrInvalidPipeline
	// ErrStoreUnavailable matches every error that came from the store,
	// see [ErrOperation].
	ErrStoreUnavailable = domain.ErrStoreUnavailable
	// ErrCursorClosed is returned when using a closed [Cursor].
	ErrCursorClosed = domain.ErrCursorClosed
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = domain.ErrScanBeforeNext
	// ErrTargetNil is returned when a nil target is given to decode into.
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when the decode target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrConstraintViolated is returned when a write would break a unique
	// index.
	ErrConstraintViolated = domain.ErrConstraintViolated
)

// ErrOperation wraps an error returned by the store with the name of the
// operation that failed.
type ErrOperation = domain.ErrOperation

// ErrDecode is returned when a document cannot be decoded into the target.
type ErrDecode = domain.ErrDecode

// Facade is the query surface. See [domain.Facade].
type Facade = domain.Facade

// Collection is what a [Facade] runs its queries on.
type Collection = domain.Collection

// Cursor iterates query results.
type Cursor = domain.Cursor

// BookRecord is the shape of a stored book.
type BookRecord = domain.BookRecord

// Document is an untyped document.
type Document = domain.Document

// Filter is a conjunction of predicates.
type Filter = domain.Filter

// Predicate is a single field condition.
type Predicate = domain.Predicate

// Projection selects the fields a query returns.
type Projection = domain.Projection

// Sort is an ordered list of sort keys.
type Sort = domain.Sort

// SortName is one key of a [Sort].
type SortName = domain.SortName

// Changes are the field assignments of an update.
type Changes = domain.Changes

// IndexKeys is the key pattern of an index.
type IndexKeys = domain.IndexKeys

// Pipeline is an aggregation pipeline.
type Pipeline = domain.Pipeline

// ExecutionStats summarizes how a query ran.
type ExecutionStats = domain.ExecutionStats

// FindOption configures [Facade.Find].
type FindOption = domain.FindOption

// Option configures the facade returned by [NewFacade], [NewMemoryFacade]
// and [Connect].
type Option = facade.Option

// Where returns a filter matching documents that satisfy every predicate.
func Where(p ...Predicate) Filter { return domain.Where(p...) }

// Eq matches field equal to v.
func Eq(field string, v any) Predicate { return domain.Eq(field, v) }

// Ne matches field not equal to v.
func Ne(field string, v any) Predicate { return domain.Ne(field, v) }

// Gt matches field greater than v.
func Gt(field string, v any) Predicate { return domain.Gt(field, v) }

// Gte matches field greater than or equal to v.
func Gte(field string, v any) Predicate { return domain.Gte(field, v) }

// Lt matches field less than v.
func Lt(field string, v any) Predicate { return domain.Lt(field, v) }

// Lte matches field less than or equal to v.
func Lte(field string, v any) Predicate { return domain.Lte(field, v) }

// In matches field equal to any of v.
func In(field string, v ...any) Predicate { return domain.In(field, v...) }

// Include returns a projection keeping only fields, plus _id.
func Include(fields ...string) Projection { return domain.Include(fields...) }

// Exclude returns a projection dropping fields.
func Exclude(fields ...string) Projection { return domain.Exclude(fields...) }

// WithoutID drops _id from p.
func WithoutID(p Projection) Projection { return domain.WithoutID(p) }

// WithProjection sets the projection of a find.
func WithProjection(p Projection) FindOption { return domain.WithFindProjection(p) }

// WithSort sets the order of a find.
func WithSort(s Sort) FindOption { return domain.WithFindSort(s) }

// WithPage skips offset documents and returns at most limit.
func WithPage(offset, limit int64) FindOption { return domain.WithFindPage(offset, limit) }

// WithLogger sets the logger of the facade.
var WithLogger = facade.WithLogger

// NewFacade returns a facade running its queries on coll.
func NewFacade(coll Collection, opts ...Option) Facade {
	return facade.NewFacade(coll, opts...)
}

// NewMemoryFacade returns a facade over a new, empty in-memory collection.
func NewMemoryFacade(opts ...Option) (Facade, error) {
	coll, err := memory.NewCollection()
	if err != nil {
		return nil, err
	}
	return facade.NewFacade(coll, opts...), nil
}

// Connect returns a facade over a MongoDB collection, along with the
// function that disconnects from the deployment.
func Connect(ctx context.Context, uri, database, collection string, opts ...Option) (Facade, func(context.Context) error, error) {
	coll, disconnect, err := mongo.Connect(ctx, uri, database, collection)
	if err != nil {
		return nil, nil, err
	}
	return facade.NewFacade(coll, opts...), disconnect, nil
}

// Collect drains cur into a slice of T and closes it.
func Collect[T any](ctx context.Context, cur Cursor) ([]T, error) {
	return cursor.Collect[T](ctx, cur)
}

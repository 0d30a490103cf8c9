// Package facade contains the default [domain.Facade] implementation. It
// validates each descriptor and then forwards it, unchanged, to a single
// [domain.Collection] call.
package facade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/validator"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Operation names attached to store errors through [domain.ErrOperation].
const (
	OpFind        = "find"
	OpFindOne     = "findOne"
	OpUpdateOne   = "updateOne"
	OpDeleteOne   = "deleteOne"
	OpAggregate   = "aggregate"
	OpCreateIndex = "createIndex"
	OpListIndexes = "listIndexes"
	OpExplain     = "explain"
	OpInsertMany  = "insertMany"
	OpCount       = "count"
)

// Facade implements [domain.Facade].
type Facade struct {
	coll      domain.Collection
	validator domain.Validator
	log       *slog.Logger
}

// NewFacade returns a new implementation of [domain.Facade] over coll.
func NewFacade(coll domain.Collection, opts ...Option) domain.Facade {
	f := Facade{coll: coll}
	for _, opt := range opts {
		opt(&f)
	}
	if f.validator == nil {
		f.validator = validator.NewValidator()
	}
	if f.log == nil {
		f.log = slog.New(slog.DiscardHandler)
	}
	return &f
}

// Find implements [domain.Facade].
func (f *Facade) Find(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Cursor, error) {
	var opts domain.FindOptions
	for _, option := range options {
		option(&opts)
	}

	if err := f.validator.ValidateFilter(filter); err != nil {
		return nil, f.reject(ctx, OpFind, err)
	}
	if err := f.validator.ValidateFindOptions(opts); err != nil {
		return nil, f.reject(ctx, OpFind, err)
	}

	f.dispatch(ctx, OpFind, "predicates", len(filter), "sort", len(opts.Sort), "paged", opts.Page != nil)
	cur, err := f.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, f.fail(ctx, OpFind, err)
	}
	return cur, nil
}

// FindOne implements [domain.Facade].
func (f *Facade) FindOne(ctx context.Context, filter domain.Filter, target any) (bool, error) {
	if target == nil {
		return false, f.reject(ctx, OpFindOne, domain.ErrTargetNil)
	}
	if err := f.validator.ValidateFilter(filter); err != nil {
		return false, f.reject(ctx, OpFindOne, err)
	}

	f.dispatch(ctx, OpFindOne, "predicates", len(filter))
	found, err := f.coll.FindOne(ctx, filter, target)
	if err != nil {
		return false, f.fail(ctx, OpFindOne, err)
	}
	return found, nil
}

// UpdateOne implements [domain.Facade].
func (f *Facade) UpdateOne(ctx context.Context, filter domain.Filter, changes domain.Changes) (domain.UpdateResult, error) {
	if err := f.validator.ValidateFilter(filter); err != nil {
		return domain.UpdateResult{}, f.reject(ctx, OpUpdateOne, err)
	}
	if err := f.validator.ValidateChanges(changes); err != nil {
		return domain.UpdateResult{}, f.reject(ctx, OpUpdateOne, err)
	}

	f.dispatch(ctx, OpUpdateOne, "predicates", len(filter), "changes", len(changes))
	res, err := f.coll.UpdateOne(ctx, filter, changes)
	if err != nil {
		return domain.UpdateResult{}, f.fail(ctx, OpUpdateOne, err)
	}
	return res, nil
}

// DeleteOne implements [domain.Facade].
func (f *Facade) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	if err := f.validator.ValidateFilter(filter); err != nil {
		return domain.DeleteResult{}, f.reject(ctx, OpDeleteOne, err)
	}

	f.dispatch(ctx, OpDeleteOne, "predicates", len(filter))
	res, err := f.coll.DeleteOne(ctx, filter)
	if err != nil {
		return domain.DeleteResult{}, f.fail(ctx, OpDeleteOne, err)
	}
	return res, nil
}

// Aggregate implements [domain.Facade].
func (f *Facade) Aggregate(ctx context.Context, pipeline domain.Pipeline) (domain.Cursor, error) {
	if err := f.validator.ValidatePipeline(pipeline); err != nil {
		return nil, f.reject(ctx, OpAggregate, err)
	}

	f.dispatch(ctx, OpAggregate, "stages", len(pipeline))
	cur, err := f.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, f.fail(ctx, OpAggregate, err)
	}
	return cur, nil
}

// CreateIndex implements [domain.Facade].
func (f *Facade) CreateIndex(ctx context.Context, keys domain.IndexKeys) (string, error) {
	if err := f.validator.ValidateIndexKeys(keys); err != nil {
		return "", f.reject(ctx, OpCreateIndex, err)
	}

	f.dispatch(ctx, OpCreateIndex, "keys", domain.IndexName(keys))
	name, err := f.coll.CreateIndex(ctx, keys)
	if err != nil {
		return "", f.fail(ctx, OpCreateIndex, err)
	}
	return name, nil
}

// ListIndexes implements [domain.Facade].
func (f *Facade) ListIndexes(ctx context.Context) ([]domain.IndexDescriptor, error) {
	f.dispatch(ctx, OpListIndexes)
	res, err := f.coll.ListIndexes(ctx)
	if err != nil {
		return nil, f.fail(ctx, OpListIndexes, err)
	}
	return res, nil
}

// Explain implements [domain.Facade].
func (f *Facade) Explain(ctx context.Context, filter domain.Filter) (domain.ExecutionStats, error) {
	if err := f.validator.ValidateFilter(filter); err != nil {
		return domain.ExecutionStats{}, f.reject(ctx, OpExplain, err)
	}

	f.dispatch(ctx, OpExplain, "predicates", len(filter))
	stats, err := f.coll.Explain(ctx, filter)
	if err != nil {
		return domain.ExecutionStats{}, f.fail(ctx, OpExplain, err)
	}
	return stats, nil
}

// InsertMany implements [domain.Facade].
func (f *Facade) InsertMany(ctx context.Context, books ...any) (domain.InsertResult, error) {
	for n, b := range books {
		if b == nil {
			err := fmt.Errorf("%w: record %d is nil", domain.ErrInvalidSpec, n)
			return domain.InsertResult{}, f.reject(ctx, OpInsertMany, err)
		}
	}

	f.dispatch(ctx, OpInsertMany, "records", len(books))
	res, err := f.coll.InsertMany(ctx, books...)
	if err != nil {
		return domain.InsertResult{}, f.fail(ctx, OpInsertMany, err)
	}
	return res, nil
}

// Count implements [domain.Facade].
func (f *Facade) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := f.validator.ValidateFilter(filter); err != nil {
		return 0, f.reject(ctx, OpCount, err)
	}

	f.dispatch(ctx, OpCount, "predicates", len(filter))
	n, err := f.coll.Count(ctx, filter)
	if err != nil {
		return 0, f.fail(ctx, OpCount, err)
	}
	return n, nil
}

func (f *Facade) dispatch(ctx context.Context, op string, args ...any) {
	f.log.DebugContext(ctx, "dispatching", append([]any{"op", op}, args...)...)
}

func (f *Facade) reject(ctx context.Context, op string, err error) error {
	f.log.DebugContext(ctx, "rejected", "op", op, "error", err)
	return err
}

func (f *Facade) fail(ctx context.Context, op string, err error) error {
	f.log.DebugContext(ctx, "store error", "op", op, "error", err)
	return &domain.ErrOperation{Op: op, Err: err}
}

// Package memory contains an in-process [domain.Collection]. It keeps every
// document in insertion order and maintains one [domain.Index] per created
// index, using at most one of them to narrow down the candidates of a filter.
// It backs tests and demos that run without a MongoDB deployment.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/index"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/pipeline"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/querier"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"github.com/vinicius-lino-figueiredo/bookquery/pkg/ctxsync"
)

// IDIndexName is the name of the unique index every collection has on _id.
const IDIndexName = "_id_"

// Plan stages reported by [Collection.Explain].
const (
	StageCollScan = "COLLSCAN"
	StageIxScan   = "IXSCAN"
)

// ErrUnhashableID is returned when a document has an _id that cannot be
// used as a map key.
var ErrUnhashableID = fmt.Errorf("%w: _id must be a comparable value", domain.ErrInvalidSpec)

// Collection implements [domain.Collection].
type Collection struct {
	mu *ctxsync.RWMutex
	// docs is kept in natural (insertion) order, which is also ascending
	// seq order.
	docs       []domain.Document
	seqs       map[any]uint64
	nextSeq    uint64
	indexes    map[string]domain.Index
	indexNames []string

	comparer      domain.Comparer
	querier       domain.Querier
	aggregator    domain.Aggregator
	decoder       domain.Decoder
	cursorFactory domain.CursorFactory
	indexFactory  domain.IndexFactory
	idGenerator   domain.IDGenerator
	timeGetter    domain.TimeGetter
}

// NewCollection returns a new, empty implementation of [domain.Collection].
func NewCollection(opts ...Option) (domain.Collection, error) {
	c := Collection{
		mu:      ctxsync.NewRWMutex(),
		seqs:    make(map[any]uint64),
		indexes: make(map[string]domain.Index),
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.comparer == nil {
		c.comparer = comparer.NewComparer()
	}
	if c.querier == nil {
		c.querier = querier.NewQuerier(querier.WithComparer(c.comparer))
	}
	if c.aggregator == nil {
		c.aggregator = pipeline.NewAggregator(
			pipeline.WithComparer(c.comparer),
			pipeline.WithQuerier(c.querier),
		)
	}
	if c.decoder == nil {
		c.decoder = decoder.NewDecoder()
	}
	if c.cursorFactory == nil {
		c.cursorFactory = cursor.NewCursor
	}
	if c.indexFactory == nil {
		c.indexFactory = index.NewIndex
	}
	if c.idGenerator == nil {
		c.idGenerator = idgenerator.NewIDGenerator()
	}
	if c.timeGetter == nil {
		c.timeGetter = timegetter.NewTimeGetter()
	}

	idIdx, err := c.indexFactory(
		domain.WithIndexKeys(domain.IndexKeys{{Field: domain.FieldID, Direction: 1}}),
		domain.WithIndexName(IDIndexName),
		domain.WithIndexUnique(true),
		domain.WithIndexComparer(c.comparer),
	)
	if err != nil {
		return nil, err
	}
	c.addIndex(idIdx)
	return &c, nil
}

func (c *Collection) addIndex(idx domain.Index) {
	c.indexes[idx.Name()] = idx
	c.indexNames = append(c.indexNames, idx.Name())
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, filter domain.Filter, opts domain.FindOptions) (domain.Cursor, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	qOpts := []domain.QueryOption{
		domain.WithQueryFilter(filter),
		domain.WithQuerySort(opts.Sort),
		domain.WithQueryProjection(opts.Projection),
	}
	if opts.Page != nil {
		qOpts = append(qOpts,
			domain.WithQuerySkip(opts.Page.Offset),
			domain.WithQueryLimit(opts.Page.Limit),
		)
	}

	res, err := c.query(ctx, filter, qOpts...)
	if err != nil {
		return nil, err
	}
	return c.cursorFactory(ctx, res, domain.WithCursorDecoder(c.decoder))
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, filter domain.Filter, target any) (bool, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return false, err
	}
	defer c.mu.RUnlock()

	doc, err := c.first(ctx, filter)
	if err != nil || doc == nil {
		return false, err
	}
	if err := c.decoder.Decode(doc, target); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateOne implements [domain.Collection]. Setting a field to a value equal
// to the current one does not count as a modification.
func (c *Collection) UpdateOne(ctx context.Context, filter domain.Filter, changes domain.Changes) (domain.UpdateResult, error) {
	if err := c.mu.LockWithContext(ctx); err != nil {
		return domain.UpdateResult{}, err
	}
	defer c.mu.Unlock()

	oldDoc, err := c.first(ctx, filter)
	if err != nil || oldDoc == nil {
		return domain.UpdateResult{}, err
	}

	newDoc := maps.Clone(oldDoc)
	modified := false
	for field, value := range changes {
		cur, ok := oldDoc[field]
		if ok {
			comp, err := c.comparer.Compare(cur, value)
			if err != nil {
				return domain.UpdateResult{}, err
			}
			ok = comp == 0
		}
		modified = modified || !ok
		newDoc[field] = value
	}
	if !modified {
		return domain.UpdateResult{MatchedCount: 1}, nil
	}

	if err := c.updateIndexes(ctx, oldDoc, newDoc); err != nil {
		return domain.UpdateResult{}, err
	}
	c.docs[c.position(oldDoc)] = newDoc
	return domain.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (c *Collection) updateIndexes(ctx context.Context, oldDoc, newDoc domain.Document) error {
	for n, name := range c.indexNames {
		if err := c.indexes[name].Update(ctx, oldDoc, newDoc); err != nil {
			noCancel := context.WithoutCancel(ctx)
			for _, prev := range c.indexNames[:n] {
				_ = c.indexes[prev].Update(noCancel, newDoc, oldDoc)
			}
			return err
		}
	}
	return nil
}

// DeleteOne implements [domain.Collection].
func (c *Collection) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	if err := c.mu.LockWithContext(ctx); err != nil {
		return domain.DeleteResult{}, err
	}
	defer c.mu.Unlock()

	doc, err := c.first(ctx, filter)
	if err != nil || doc == nil {
		return domain.DeleteResult{}, err
	}

	noCancel := context.WithoutCancel(ctx)
	for n, name := range c.indexNames {
		if err := c.indexes[name].Remove(noCancel, doc); err != nil {
			errs := []error{err}
			for _, prev := range c.indexNames[:n] {
				errs = append(errs, c.indexes[prev].Insert(noCancel, doc))
			}
			return domain.DeleteResult{}, errors.Join(errs...)
		}
	}
	pos := c.position(doc)
	c.docs = slices.Delete(c.docs, pos, pos+1)
	delete(c.seqs, doc[domain.FieldID])

	return domain.DeleteResult{DeletedCount: 1}, nil
}

// Aggregate implements [domain.Collection].
func (c *Collection) Aggregate(ctx context.Context, p domain.Pipeline) (domain.Cursor, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	res, err := c.aggregator.Aggregate(ctx, slices.Clone(c.docs), p)
	if err != nil {
		return nil, err
	}
	return c.cursorFactory(ctx, res, domain.WithCursorDecoder(c.decoder))
}

// CreateIndex implements [domain.Collection]. Creating an index whose keys
// match an existing one returns the existing name.
func (c *Collection) CreateIndex(ctx context.Context, keys domain.IndexKeys) (string, error) {
	if err := c.mu.LockWithContext(ctx); err != nil {
		return "", err
	}
	defer c.mu.Unlock()

	for _, name := range c.indexNames {
		if slices.Equal(c.indexes[name].Keys(), keys) {
			return name, nil
		}
	}

	idx, err := c.indexFactory(
		domain.WithIndexKeys(keys),
		domain.WithIndexName(domain.IndexName(keys)),
		domain.WithIndexComparer(c.comparer),
	)
	if err != nil {
		return "", err
	}
	if err := idx.Insert(ctx, c.docs...); err != nil {
		return "", err
	}
	c.addIndex(idx)
	return idx.Name(), nil
}

// ListIndexes implements [domain.Collection]. Indexes are listed in creation
// order, starting with [IDIndexName].
func (c *Collection) ListIndexes(ctx context.Context) ([]domain.IndexDescriptor, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return nil, err
	}
	defer c.mu.RUnlock()

	res := make([]domain.IndexDescriptor, len(c.indexNames))
	for n, name := range c.indexNames {
		idx := c.indexes[name]
		res[n] = domain.IndexDescriptor{Name: name, Keys: idx.Keys(), Unique: idx.Unique()}
	}
	return res, nil
}

// Explain implements [domain.Collection]. Raw mimics the shape of a document
// store explain reply.
func (c *Collection) Explain(ctx context.Context, filter domain.Filter) (domain.ExecutionStats, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return domain.ExecutionStats{}, err
	}
	defer c.mu.RUnlock()

	start := c.timeGetter.GetTime()
	candidates, idx, err := c.candidates(ctx, filter)
	if err != nil {
		return domain.ExecutionStats{}, err
	}
	res, err := c.querier.Query(slices.Values(candidates), domain.WithQueryFilter(filter))
	if err != nil {
		return domain.ExecutionStats{}, err
	}
	elapsed := c.timeGetter.GetTime().Sub(start)

	stats := domain.ExecutionStats{
		Stage:         StageCollScan,
		Returned:      int64(len(res)),
		DocsExamined:  int64(len(candidates)),
		ExecutionTime: elapsed,
	}
	winningPlan := domain.Document{"stage": StageCollScan}
	if idx != nil {
		stats.Stage = StageIxScan
		stats.IndexName = idx.Name()
		stats.KeysExamined = int64(len(candidates))

		keyPattern := make(domain.Document, len(idx.Keys()))
		for _, k := range idx.Keys() {
			keyPattern[k.Field] = k.Direction
		}
		winningPlan = domain.Document{
			"stage": "FETCH",
			"inputStage": domain.Document{
				"stage":      StageIxScan,
				"indexName":  idx.Name(),
				"keyPattern": keyPattern,
			},
		}
	}
	stats.Raw = domain.Document{
		"queryPlanner": domain.Document{"winningPlan": winningPlan},
		"executionStats": domain.Document{
			"nReturned":           stats.Returned,
			"totalKeysExamined":   stats.KeysExamined,
			"totalDocsExamined":   stats.DocsExamined,
			"executionTimeMillis": elapsed.Milliseconds(),
		},
	}
	return stats, nil
}

// InsertMany implements [domain.Collection]. Documents without _id get a
// generated one. Either every document is inserted or none is.
func (c *Collection) InsertMany(ctx context.Context, docs ...any) (domain.InsertResult, error) {
	if err := c.mu.LockWithContext(ctx); err != nil {
		return domain.InsertResult{}, err
	}
	defer c.mu.Unlock()

	prepared := make([]domain.Document, len(docs))
	ids := make([]any, len(docs))
	for n, d := range docs {
		doc, err := decoder.ToDocument(d)
		if err != nil {
			return domain.InsertResult{}, fmt.Errorf("document %d: %w", n, err)
		}
		if doc[domain.FieldID] == nil {
			if doc[domain.FieldID], err = c.idGenerator.GenerateID(); err != nil {
				return domain.InsertResult{}, err
			}
		}
		if !reflect.TypeOf(doc[domain.FieldID]).Comparable() {
			return domain.InsertResult{}, fmt.Errorf("document %d: %w", n, ErrUnhashableID)
		}
		prepared[n] = doc
		ids[n] = doc[domain.FieldID]
	}

	for n, name := range c.indexNames {
		if err := c.indexes[name].Insert(ctx, prepared...); err != nil {
			noCancel := context.WithoutCancel(ctx)
			for _, prev := range c.indexNames[:n] {
				_ = c.indexes[prev].Remove(noCancel, prepared...)
			}
			return domain.InsertResult{}, err
		}
	}

	for _, doc := range prepared {
		c.seqs[doc[domain.FieldID]] = c.nextSeq
		c.nextSeq++
	}
	c.docs = append(c.docs, prepared...)
	return domain.InsertResult{InsertedIDs: ids}, nil
}

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	if err := c.mu.RLockWithContext(ctx); err != nil {
		return 0, err
	}
	defer c.mu.RUnlock()

	res, err := c.query(ctx, filter, domain.WithQueryFilter(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(res)), nil
}

func (c *Collection) query(ctx context.Context, filter domain.Filter, opts ...domain.QueryOption) ([]domain.Document, error) {
	candidates, _, err := c.candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	return c.querier.Query(slices.Values(candidates), opts...)
}

// first returns the first document matching filter in natural order, or nil.
func (c *Collection) first(ctx context.Context, filter domain.Filter) (domain.Document, error) {
	res, err := c.query(ctx, filter, domain.WithQueryFilter(filter), domain.WithQueryLimit(1))
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return res[0], nil
}

// candidates returns, in natural order, a superset of the documents matching
// filter, along with the index used to find them. An equality or in
// predicate on the first field of an index is preferred over range
// predicates. Without a usable index every document is a candidate.
func (c *Collection) candidates(ctx context.Context, filter domain.Filter) ([]domain.Document, domain.Index, error) {
	for _, p := range filter {
		idx := c.indexOn(p.Field)
		if idx == nil {
			continue
		}
		switch p.Op {
		case domain.OpEq:
			docs, err := idx.GetMatching(p.Value)
			return c.naturalOrder(docs), idx, err
		case domain.OpIn:
			values, ok := p.Value.([]any)
			if !ok {
				continue
			}
			docs, err := idx.GetMatching(values...)
			return c.naturalOrder(docs), idx, err
		}
	}

	for _, p := range filter {
		idx := c.indexOn(p.Field)
		if idx == nil || !isRange(p.Op) {
			continue
		}
		var bounds []domain.Predicate
		for _, b := range filter {
			if b.Field == p.Field && isRange(b.Op) {
				bounds = append(bounds, b)
			}
		}
		docs, err := idx.GetBetweenBounds(ctx, bounds...)
		return c.naturalOrder(docs), idx, err
	}

	return c.docs, nil, nil
}

// indexOn returns the oldest index whose first key is field.
func (c *Collection) indexOn(field string) domain.Index {
	for _, name := range c.indexNames {
		idx := c.indexes[name]
		if idx.Keys()[0].Field == field {
			return idx
		}
	}
	return nil
}

func isRange(op domain.Operator) bool {
	switch op {
	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		return true
	}
	return false
}

func (c *Collection) naturalOrder(docs []domain.Document) []domain.Document {
	slices.SortFunc(docs, func(a, b domain.Document) int {
		return cmp.Compare(c.seqs[a[domain.FieldID]], c.seqs[b[domain.FieldID]])
	})
	return docs
}

// position returns the position of a stored document in c.docs.
func (c *Collection) position(doc domain.Document) int {
	seq := c.seqs[doc[domain.FieldID]]
	n, _ := slices.BinarySearchFunc(c.docs, seq, func(d domain.Document, s uint64) int {
		return cmp.Compare(c.seqs[d[domain.FieldID]], s)
	})
	return n
}

// Package pipeline contains the default [domain.Aggregator] implementation.
package pipeline

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/hasher"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/querier"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Aggregator implements [domain.Aggregator]. Stages run one after another
// over the whole document set.
type Aggregator struct {
	cmpr domain.Comparer
	hshr domain.Hasher
	qrr  domain.Querier
}

// NewAggregator returns a new implementation of [domain.Aggregator].
func NewAggregator(opts ...Option) domain.Aggregator {
	a := Aggregator{}
	for _, opt := range opts {
		opt(&a)
	}
	if a.cmpr == nil {
		a.cmpr = comparer.NewComparer()
	}
	if a.hshr == nil {
		a.hshr = hasher.NewHasher()
	}
	if a.qrr == nil {
		a.qrr = querier.NewQuerier(querier.WithComparer(a.cmpr))
	}
	return &a
}

// Aggregate implements [domain.Aggregator]. The input documents are never
// modified.
func (a *Aggregator) Aggregate(ctx context.Context, docs []domain.Document, pipeline domain.Pipeline) ([]domain.Document, error) {
	var err error
	for n, stage := range pipeline {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		docs, err = a.runStage(stage, docs)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", n, err)
		}
	}
	if docs == nil {
		docs = make([]domain.Document, 0)
	}
	return docs, nil
}

func (a *Aggregator) runStage(stage domain.Stage, docs []domain.Document) ([]domain.Document, error) {
	switch s := stage.(type) {
	case domain.GroupStage:
		return a.group(s, docs)
	case domain.SortStage:
		return a.qrr.Query(slices.Values(docs),
			domain.WithQuerySort(s.Sort),
			domain.WithQueryCap(len(docs)),
		)
	case domain.ProjectStage:
		return a.project(s, docs)
	case domain.AddFieldsStage:
		return a.addFields(s, docs)
	case domain.LimitStage:
		if s.N <= 0 {
			return nil, fmt.Errorf("%w: non-positive limit %d", domain.ErrInvalidPipeline, s.N)
		}
		return docs[:min(int64(len(docs)), s.N)], nil
	}
	return nil, fmt.Errorf("%w: unknown stage %T", domain.ErrInvalidPipeline, stage)
}

type group struct {
	key  any
	accs []accumulator
}

// group emits groups in the order their keys are first seen. Keys are
// bucketed by hash and compared within a bucket.
func (a *Aggregator) group(s domain.GroupStage, docs []domain.Document) ([]domain.Document, error) {
	var groups []*group
	buckets := make(map[uint64][]*group)
	for _, doc := range docs {
		var key any
		if s.Key != nil {
			var err error
			if key, err = a.Eval(doc, s.Key); err != nil {
				return nil, fmt.Errorf("group key: %w", err)
			}
		}

		hash, err := a.hshr.Hash(key)
		if err != nil {
			return nil, fmt.Errorf("group key: %w", err)
		}
		g, err := a.findGroup(buckets[hash], key)
		if err != nil {
			return nil, err
		}
		if g == nil {
			g = &group{key: key, accs: make([]accumulator, len(s.Accumulators))}
			for n, acc := range s.Accumulators {
				if g.accs[n], err = newAccumulator(acc.Op, a.cmpr); err != nil {
					return nil, err
				}
			}
			groups = append(groups, g)
			buckets[hash] = append(buckets[hash], g)
		}

		for n, acc := range s.Accumulators {
			value, err := a.Eval(doc, acc.Expr)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", acc.Name, err)
			}
			if err := g.accs[n].add(value); err != nil {
				return nil, fmt.Errorf("%s: %w", acc.Name, err)
			}
		}
	}

	res := make([]domain.Document, len(groups))
	for n, g := range groups {
		out := make(domain.Document, len(s.Accumulators)+1)
		out[domain.FieldID] = g.key
		for i, acc := range s.Accumulators {
			out[acc.Name] = g.accs[i].result()
		}
		res[n] = out
	}
	return res, nil
}

func (a *Aggregator) findGroup(groups []*group, key any) (*group, error) {
	for _, g := range groups {
		comp, err := a.cmpr.Compare(g.key, key)
		if err != nil {
			return nil, fmt.Errorf("group key: %w", err)
		}
		if comp == 0 {
			return g, nil
		}
	}
	return nil, nil
}

func (a *Aggregator) project(s domain.ProjectStage, docs []domain.Document) ([]domain.Document, error) {
	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		out := make(domain.Document, len(s.Fields)+1)
		if id, ok := doc[domain.FieldID]; ok && !s.ExcludeID {
			out[domain.FieldID] = id
		}
		if err := a.setFields(out, doc, s.Fields); err != nil {
			return nil, err
		}
		res[n] = out
	}
	return res, nil
}

func (a *Aggregator) addFields(s domain.AddFieldsStage, docs []domain.Document) ([]domain.Document, error) {
	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		out := maps.Clone(doc)
		if out == nil {
			out = make(domain.Document, len(s.Fields))
		}
		if err := a.setFields(out, doc, s.Fields); err != nil {
			return nil, err
		}
		res[n] = out
	}
	return res, nil
}

// setFields evaluates fields against src and writes them to dst.
func (a *Aggregator) setFields(dst, src domain.Document, fields []domain.Field) error {
	for _, f := range fields {
		v, err := a.Eval(src, f.Expr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		dst[f.Name] = v
	}
	return nil
}

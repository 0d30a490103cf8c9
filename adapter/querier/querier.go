// Package querier contains the default [domain.Querier] implementation.
package querier

import (
	"fmt"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/projector"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Querier implements [domain.Querier]. Documents are filtered, sorted, skipped,
// limited and finally projected, so sort keys always resolve against the
// source document.
type Querier struct {
	mtchr domain.Matcher
	cmpr  domain.Comparer
	proj  domain.Projector
}

// NewQuerier returns a new implementation of [domain.Querier].
func NewQuerier(opts ...Option) domain.Querier {
	q := Querier{}
	for _, opt := range opts {
		opt(&q)
	}
	if q.cmpr == nil {
		q.cmpr = comparer.NewComparer()
	}
	if q.proj == nil {
		q.proj = projector.NewProjector()
	}
	if q.mtchr == nil {
		q.mtchr = matcher.NewMatcher(matcher.WithComparer(q.cmpr))
	}
	return &q
}

// Query implements [domain.Querier].
func (q *Querier) Query(data iter.Seq[domain.Document], opts ...domain.QueryOption) ([]domain.Document, error) {
	if data == nil {
		return make([]domain.Document, 0), nil
	}

	options := domain.QueryOptions{Cap: 256}
	for _, opt := range opts {
		opt(&options)
	}

	res, err := q.filter(data, options)
	if err != nil {
		return nil, err
	}

	if len(options.Sort) > 0 {
		sorted, err := q.sort(res, options.Sort)
		if err != nil {
			return nil, fmt.Errorf("sorting: %w", err)
		}
		res = q.skipAndLimit(sorted, options.Skip, options.Limit)
	}

	res, err = q.proj.Project(res, options.Projection)
	if err != nil {
		return nil, fmt.Errorf("projecting: %w", err)
	}
	return res, nil
}

// filter applies skip and limit while reading when there is no sort, so the
// sequence is not read past the last needed document.
func (q *Querier) filter(data iter.Seq[domain.Document], opts domain.QueryOptions) ([]domain.Document, error) {
	var skipped int64
	res := make([]domain.Document, 0, opts.Cap)

	for doc := range data {
		if len(opts.Filter) > 0 {
			matches, err := q.mtchr.Match(doc, opts.Filter)
			if err != nil {
				return nil, fmt.Errorf("matching document: %w", err)
			}
			if !matches {
				continue
			}
		}
		if len(opts.Sort) == 0 {
			if skipped < opts.Skip {
				skipped++
				continue
			}
			if opts.Limit > 0 && int64(len(res)) == opts.Limit {
				break
			}
		}
		res = append(res, doc)
	}
	return res, nil
}

// sort is stable: documents with equal keys keep their natural order.
func (q *Querier) sort(data []domain.Document, sort domain.Sort) ([]domain.Document, error) {
	res := slices.Clone(data)
	var err error
	slices.SortStableFunc(res, func(a, b domain.Document) int {
		if err != nil {
			return 0
		}
		for _, crit := range sort {
			comp, cErr := q.cmpr.Compare(a[crit.Key], b[crit.Key])
			if cErr != nil {
				err = cErr
				return 0
			}
			if comp != 0 {
				return comp * int(crit.Order)
			}
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *Querier) skipAndLimit(data []domain.Document, skip, limit int64) []domain.Document {

	length := int64(len(data))

	skip = max(skip, 0)      // skip cannot be negative
	skip = min(skip, length) // cannot skip more than length

	end := length
	if limit > 0 {
		end = min(skip+limit, length)
	}

	return data[skip:end]
}

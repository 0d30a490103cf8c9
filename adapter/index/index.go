// Package index contains the default [domain.Index] implementation.
package index

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/bookquery/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Index implements [domain.Index]. Documents are keyed on the value of the
// first indexed field, missing values being keyed as nil. The remaining
// fields are kept only to describe the index.
type Index struct {
	name   string
	keys   domain.IndexKeys
	field  string
	unique bool
	// Exported to allow testing. Should not be a problem because Index is
	// used as interface.
	Tree        bst.BST[any, domain.Document]
	comparer    domain.Comparer
	bstComparer bst.Comparer[any, domain.Document]
}

// NewIndex returns a new implementation of domain.Index.
func NewIndex(options ...domain.IndexOption) (domain.Index, error) {
	opts := domain.IndexOptions{
		Comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(&opts)
	}

	if len(opts.Keys) == 0 {
		return nil, fmt.Errorf("%w: index has no keys", domain.ErrInvalidSpec)
	}
	if opts.Name == "" {
		opts.Name = domain.IndexName(opts.Keys)
	}

	bstComparer := NewBSTComparer(opts.Comparer)

	return &Index{
		name:        opts.Name,
		keys:        slices.Clone(opts.Keys),
		field:       opts.Keys[0].Field,
		unique:      opts.Unique,
		Tree:        avl.NewBST(opts.Unique, 8, bstComparer),
		comparer:    opts.Comparer,
		bstComparer: bstComparer,
	}, nil
}

// Name implements [domain.Index].
func (i *Index) Name() string {
	return i.name
}

// Keys implements [domain.Index].
func (i *Index) Keys() domain.IndexKeys {
	return slices.Clone(i.keys)
}

// Unique implements [domain.Index].
func (i *Index) Unique() bool {
	return i.unique
}

// Insert implements [domain.Index]. If any document fails, the documents
// already inserted by this call are removed again.
func (i *Index) Insert(ctx context.Context, docs ...domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var err error
	inserted := 0
	for _, d := range docs {
		if err = i.Tree.Insert(d[i.field], d); err != nil {
			if e := new(bst.ErrUniqueViolated); errors.As(err, e) {
				err = fmt.Errorf("%w: index %s: %w", domain.ErrConstraintViolated, i.name, err)
			}
			break
		}
		inserted++
	}
	if err != nil {
		nErrs := []error{err}
		for _, d := range docs[:inserted] {
			if dErr := i.Tree.Delete(d[i.field], &d); dErr != nil {
				nErrs = append(nErrs, dErr)
			}
		}
		return errors.Join(nErrs...)
	}
	return nil
}

// Remove implements [domain.Index].
func (i *Index) Remove(ctx context.Context, docs ...domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	errs := make([]error, 0, len(docs))
	for _, d := range docs {
		if err := i.Tree.Delete(d[i.field], &d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update implements [domain.Index]. On failure oldDoc is indexed again.
func (i *Index) Update(ctx context.Context, oldDoc, newDoc domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := i.Remove(ctx, oldDoc); err != nil {
		return err
	}
	if err := i.Insert(ctx, newDoc); err != nil {
		_ = i.Insert(context.WithoutCancel(ctx), oldDoc)
		return err
	}
	return nil
}

// GetMatching implements [domain.Index]. Documents are returned in key order,
// and a value given twice is only looked up once.
func (i *Index) GetMatching(values ...any) ([]domain.Document, error) {
	keys := slices.Clone(values)
	var err error
	slices.SortFunc(keys, func(a, b any) int {
		if err != nil {
			return 0
		}
		comp, compErr := i.comparer.Compare(a, b)
		if compErr != nil {
			err = compErr
		}
		return comp
	})
	if err != nil {
		return nil, err
	}
	keys = slices.CompactFunc(keys, func(a, b any) bool {
		comp, _ := i.comparer.Compare(a, b)
		return comp == 0
	})

	var res []domain.Document
	for _, k := range keys {
		found, err := i.Tree.Search(k)
		if err != nil {
			return nil, err
		}
		if found == nil {
			continue
		}
		res = append(res, found.Values()...)
	}
	return res, nil
}

// GetBetweenBounds implements [domain.Index]. Only gt, gte, lt and lte
// predicates can bound an index; when several bound the same side, the
// tightest one is used.
func (i *Index) GetBetweenBounds(ctx context.Context, preds ...domain.Predicate) ([]domain.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var qry bst.Query[any]
	for _, p := range preds {
		var err error
		switch p.Op {
		case domain.OpGt, domain.OpGte:
			b := &bst.Bound[any]{Value: p.Value, IncludeEqual: p.Op == domain.OpGte}
			qry.GreaterThan, err = i.tighter(qry.GreaterThan, b, 1)
		case domain.OpLt, domain.OpLte:
			b := &bst.Bound[any]{Value: p.Value, IncludeEqual: p.Op == domain.OpLte}
			qry.LowerThan, err = i.tighter(qry.LowerThan, b, -1)
		default:
			err = fmt.Errorf("%w: operator %q cannot bound an index", domain.ErrInvalidSpec, p.Op)
		}
		if err != nil {
			return nil, err
		}
	}

	var res []domain.Document
	for doc, err := range i.Tree.Query(qry) {
		if err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	return res, nil
}

// tighter returns whichever bound excludes more keys. dir is 1 for lower
// bounds and -1 for upper bounds.
func (i *Index) tighter(cur, next *bst.Bound[any], dir int) (*bst.Bound[any], error) {
	if cur == nil {
		return next, nil
	}
	comp, err := i.comparer.Compare(next.Value, cur.Value)
	if err != nil {
		return nil, err
	}
	switch comp * dir {
	case 1:
		return next, nil
	case -1:
		return cur, nil
	}
	if !next.IncludeEqual {
		return next, nil
	}
	return cur, nil
}

// GetNumberOfKeys implements [domain.Index].
func (i *Index) GetNumberOfKeys() int {
	return i.Tree.GetNumberOfKeys()
}

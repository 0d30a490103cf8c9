// Package cursor contains the default [domain.Cursor] implementation, backed by
// an in-memory result set.
package cursor

import (
	"context"

	"github.com/vinicius-lino-figueiredo/bookquery/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
)

// Cursor implements [domain.Cursor].
type Cursor struct {
	data   []domain.Document
	ctx    context.Context
	cancel context.CancelCauseFunc
	dec    domain.Decoder
	index  int64
}

// NewCursor returns a new implementation of [domain.Cursor]. It fails if ctx
// is already done.
func NewCursor(ctx context.Context, dt []domain.Document, options ...domain.CursorOption) (domain.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := domain.CursorOptions{
		Decoder: decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&opts)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	return &Cursor{
		ctx:    ctx,
		cancel: cancel,
		index:  -1,
		dec:    opts.Decoder,
		data:   dt,
	}, nil
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	return context.Cause(c.ctx)
}

// Scan implements [domain.Cursor].
func (c *Cursor) Scan(ctx context.Context, target any) error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.index < 0 {
		return domain.ErrScanBeforeNext
	}
	return c.dec.Decode(c.data[c.index], target)
}

// Close implements [domain.Cursor]. Closing twice returns
// [domain.ErrCursorClosed].
func (c *Cursor) Close() error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	c.cancel(domain.ErrCursorClosed)
	c.data = nil
	return nil
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	if c.ctx.Err() != nil {
		return false
	}
	if c.index+1 < int64(len(c.data)) {
		c.index++
		return true
	}
	return false
}

// Collect drains cur, decoding every document into a new T, and closes it.
func Collect[T any](ctx context.Context, cur domain.Cursor) ([]T, error) {
	defer cur.Close()

	var res []T
	for cur.Next() {
		var item T
		if err := cur.Scan(ctx, &item); err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

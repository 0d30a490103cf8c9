package mongo

import (
	"context"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/bookquery/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// Cursor implements [domain.Cursor] over a driver cursor. Batches are
// fetched lazily with the context given to the call that opened it.
type Cursor struct {
	cur     *mongo.Cursor
	ctx     context.Context
	cancel  context.CancelCauseFunc
	started bool
}

func newCursor(ctx context.Context, cur *mongo.Cursor) *Cursor {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Cursor{cur: cur, ctx: ctx, cancel: cancel}
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	if c.ctx.Err() != nil {
		return false
	}
	if !c.cur.Next(c.ctx) {
		return false
	}
	c.started = true
	return true
}

// Scan implements [domain.Cursor].
func (c *Cursor) Scan(ctx context.Context, target any) error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.started {
		return domain.ErrScanBeforeNext
	}
	if target == nil {
		return domain.ErrTargetNil
	}
	if v := reflect.ValueNoEscapeOf(target); v.Kind() != reflect.Ptr || v.IsNil() {
		return domain.ErrNonPointer
	}
	return c.cur.Decode(target)
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	return c.cur.Err()
}

// Close implements [domain.Cursor]. Closing twice returns
// [domain.ErrCursorClosed].
func (c *Cursor) Close() error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	c.cancel(domain.ErrCursorClosed)
	return c.cur.Close(context.WithoutCancel(c.ctx))
}

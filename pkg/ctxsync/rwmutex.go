// Package ctxsync provides synchronization primitives whose blocking calls can
// be abandoned through a [context.Context].
package ctxsync

import "context"

// NewRWMutex creates a new instance of RWMutex.
func NewRWMutex() *RWMutex {
	return &RWMutex{
		w:  make(chan struct{}, 1),
		rg: make(chan struct{}, 1),
	}
}

// A RWMutex is a reader/writer mutual exclusion lock. Any number of readers
// or a single writer can hold it. It is not write-preferring: a steady flow of
// readers can keep a writer waiting until its context is done.
type RWMutex struct {
	// w is held by a writer or on behalf of all current readers.
	w chan struct{}
	// rg guards readers.
	rg      chan struct{}
	readers int
}

// Lock locks rw for writing with a context.Background().
func (rw *RWMutex) Lock() {
	_ = rw.LockWithContext(context.Background())
}

// LockWithContext locks rw for writing, waiting until it is available or ctx
// is done.
func (rw *RWMutex) LockWithContext(ctx context.Context) error {
	return acquire(ctx, rw.w)
}

// TryLock tries to lock rw for writing and reports whether it succeeded.
func (rw *RWMutex) TryLock() bool {
	select {
	case rw.w <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks rw for writing.
func (rw *RWMutex) Unlock() {
	release(rw.w, "ctxsync: unlock of unlocked RWMutex")
}

// RLock locks rw for reading with a context.Background().
func (rw *RWMutex) RLock() {
	_ = rw.RLockWithContext(context.Background())
}

// RLockWithContext locks rw for reading, waiting until no writer holds it or
// ctx is done.
func (rw *RWMutex) RLockWithContext(ctx context.Context) error {
	if err := acquire(ctx, rw.rg); err != nil {
		return err
	}
	defer release(rw.rg, "")

	if rw.readers == 0 {
		if err := acquire(ctx, rw.w); err != nil {
			return err
		}
	}
	rw.readers++
	return nil
}

// RUnlock undoes a single RLock call.
func (rw *RWMutex) RUnlock() {
	rw.rg <- struct{}{}
	defer release(rw.rg, "")

	if rw.readers == 0 {
		panic("ctxsync: RUnlock of unlocked RWMutex")
	}
	rw.readers--
	if rw.readers == 0 {
		release(rw.w, "")
	}
}

func acquire(ctx context.Context, ch chan struct{}) error {
	// a done context never acquires, even if ch is free.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ch <- struct{}{}:
		return nil
	}
}

func release(ch chan struct{}, msg string) {
	select {
	case <-ch:
	default:
		panic(msg)
	}
}

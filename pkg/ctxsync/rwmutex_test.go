package ctxsync_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vinicius-lino-figueiredo/bookquery/pkg/ctxsync"
)

// Multiple goroutines should not be able to acquire the same lock.
func TestLock(t *testing.T) {
	workers := 1000

	n := 0
	mu := ctxsync.NewRWMutex()

	getReady := sync.WaitGroup{} // called before locking on ch
	add := sync.WaitGroup{}      // called after adding 1 to n

	getReady.Add(workers)
	add.Add(workers)

	ch := make(chan struct{})

	for range workers {
		go func() {
			defer add.Done()
			getReady.Done()
			<-ch // released after all goroutines are waiting here
			mu.Lock()
			defer mu.Unlock()
			n++
		}()
	}

	getReady.Wait()
	close(ch)
	add.Wait()

	assert.Equal(t, workers, n)
}

// Readers share the lock.
func TestReaders(t *testing.T) {
	mu := ctxsync.NewRWMutex()
	ctx := context.Background()

	assert.NoError(t, mu.RLockWithContext(ctx))
	assert.NoError(t, mu.RLockWithContext(ctx))
	assert.False(t, mu.TryLock())

	mu.RUnlock()
	assert.False(t, mu.TryLock())

	mu.RUnlock()
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

// A writer keeps readers out until it unlocks.
func TestWriterBlocksReaders(t *testing.T) {
	mu := ctxsync.NewRWMutex()
	mu.Lock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, mu.RLockWithContext(ctx), context.DeadlineExceeded)

	done := make(chan struct{})
	go func() {
		defer close(done)
		mu.RLock()
		mu.RUnlock()
	}()

	mu.Unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired the lock")
	}
}

// Should return error when context is canceled while waiting.
func TestCanceling(t *testing.T) {
	const workers = 100

	mu := ctxsync.NewRWMutex()
	mu.Lock()

	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, workers*2)
	wg := sync.WaitGroup{}
	for range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- mu.LockWithContext(ctx)
		}()
		go func() {
			defer wg.Done()
			errs <- mu.RLockWithContext(ctx)
		}()
	}

	time.Sleep(time.Millisecond)
	cancel()
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, context.Canceled)
	}
	mu.Unlock()
}

// A canceled context never acquires the lock, even when it is free.
func TestDoneContext(t *testing.T) {
	mu := ctxsync.NewRWMutex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, mu.LockWithContext(ctx), context.Canceled)
	assert.ErrorIs(t, mu.RLockWithContext(ctx), context.Canceled)
	assert.True(t, mu.TryLock())
	mu.Unlock()
}

func TestUnlockPanics(t *testing.T) {
	mu := ctxsync.NewRWMutex()
	assert.Panics(t, mu.Unlock)
	assert.Panics(t, mu.RUnlock)
}

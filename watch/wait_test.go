package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func isEven(v int) bool { return v%2 == 0 }

func TestWaitUntil_AlreadySatisfied(t *testing.T) {
	r := NewRef(4)

	done := make(chan int, 1)

	go func() {
		done <- WaitUntil(r, isEven)
	}()

	select {
	case v := <-done:
		assert.Equal(t, 4, v)
	case <-time.After(time.Second):
		t.Fatal("WaitUntil blocked although the predicate already held")
	}

	// The fast path registers no watcher.
	r.watchersMu.Lock()
	assert.Empty(t, r.watchers)
	r.watchersMu.Unlock()
}

func TestWaitUntil_SatisfiedAfterUnrelatedUpdates(t *testing.T) {
	r := NewRef(1)

	done := make(chan int, 1)

	go func() {
		done <- WaitUntil(r, func(v int) bool { return v >= 100 })
	}()

	for _, v := range []int{3, 5, 7, 101} {
		r.Update(func(int) int { return v })
	}

	select {
	case v := <-done:
		assert.Equal(t, 101, v)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for satisfying update")
	}
}

func TestWaitUntil_RaceWithConcurrentUpdate(t *testing.T) {
	// The satisfying update may land between WaitUntil's first check and its
	// watcher registration; the second check must keep it from blocking.
	for range 200 {
		r := NewRef(1)

		var g errgroup.Group

		g.Go(func() error {
			r.Update(func(int) int { return 2 })
			return nil
		})

		v, err := WaitUntilContext(context.Background(), r, isEven)
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		require.NoError(t, g.Wait())
	}
}

func TestWaitUntil_ReturnedValueSatisfiesPredicate(t *testing.T) {
	r := NewRef(1)

	done := make(chan int, 1)

	go func() {
		done <- WaitUntil(r, isEven)
	}()

	go func() {
		for i := 2; i <= 20; i++ {
			r.Update(func(int) int { return i })
		}
	}()

	select {
	case v := <-done:
		assert.True(t, isEven(v))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for satisfying update")
	}
}

func TestWaitUntilContext_Cancelled(t *testing.T) {
	r := NewRef(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := WaitUntilContext(ctx, r, isEven)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, v)

	// Cancellation must not leak the watcher.
	r.watchersMu.Lock()
	assert.Empty(t, r.watchers)
	r.watchersMu.Unlock()
}

package watch

import (
	"context"

	"github.com/google/uuid"
)

// WaitUntil blocks the calling goroutine until pred holds for the current
// value of ref, and returns that value. If pred already holds it returns
// immediately without registering a watcher.
//
// The returned value always satisfied pred at the moment it was produced.
// WaitUntil blocks forever if pred never becomes true; callers wanting
// bounded waits should use WaitUntilContext.
//
// pred must be side-effect-free. It is invoked on the calling goroutine and,
// once a watcher is registered, on updating goroutines.
func WaitUntil[T any](ref *Ref[T], pred func(T) bool) T {
	if v := ref.Read(); pred(v) {
		return v
	}

	slot, key := watchInto(ref, pred)

	// Re-check after registration: the reference may have transitioned into
	// a satisfying state between the first read and AddWatcher, with no
	// further update coming to fire the watcher.
	if v := ref.Read(); pred(v) {
		ref.RemoveWatcher(key)
		return v
	}

	return <-slot
}

// WaitUntilContext is WaitUntil with cancellation: it additionally returns
// early with ctx.Err() when ctx is done before pred holds.
func WaitUntilContext[T any](ctx context.Context, ref *Ref[T], pred func(T) bool) (T, error) {
	if v := ref.Read(); pred(v) {
		return v, nil
	}

	slot, key := watchInto(ref, pred)

	if v := ref.Read(); pred(v) {
		ref.RemoveWatcher(key)
		return v, nil
	}

	select {
	case v := <-slot:
		return v, nil
	case <-ctx.Done():
		ref.RemoveWatcher(key)

		var zero T

		return zero, ctx.Err()
	}
}

// watchInto registers a one-shot watcher delivering the first satisfying
// update into the returned slot. The slot holds at most one value; later
// satisfying updates are dropped, which is harmless because the watcher
// removes itself on first delivery and notifications are serialized.
func watchInto[T any](ref *Ref[T], pred func(T) bool) (chan T, string) {
	slot := make(chan T, 1)
	key := uuid.NewString()

	ref.AddWatcher(key, func(key string, r *Ref[T], _, updated T) {
		if !pred(updated) {
			return
		}

		select {
		case slot <- updated:
		default:
		}

		r.RemoveWatcher(key)
	})

	return slot, key
}

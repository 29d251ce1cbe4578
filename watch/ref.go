// Package watch provides a watchable shared reference: a single value that is
// updated atomically through pure functions and that notifies named watcher
// callbacks synchronously after every successful update. It is the
// coordination point the rest of this module is built on; see WaitUntil for
// the blocking-read side.
package watch

import (
	"sync"
	"sync/atomic"
)

// WatchFunc is invoked after every successful update with the watcher's own
// key, the reference it was registered on, and the old and updated values.
//
// Watchers run synchronously on the updating goroutine, after the updated
// value is visible to Read. A watcher may call Read, AddWatcher, and
// RemoveWatcher on the reference it observes, but MUST NOT call Update on it.
type WatchFunc[T any] func(key string, ref *Ref[T], old, updated T)

// Ref is an atomically updatable shared value with change notification.
//
// The value held by a Ref must be treated as immutable: Update replaces it
// wholesale via a pure function, it is never mutated in place. If T is a
// pointer, map, or slice, callers must not modify the pointed-to data after
// publishing it.
//
// The zero Ref is not usable; construct with NewRef.
type Ref[T any] struct {
	// mu serializes updates and their notifications so that watchers
	// observe updates in application order.
	mu    sync.Mutex
	value atomic.Pointer[T]

	// watchers has its own lock so a watcher callback can deregister
	// itself while the update lock is held.
	watchersMu sync.Mutex
	watchers   map[string]WatchFunc[T]
}

// NewRef returns a reference holding initial.
func NewRef[T any](initial T) *Ref[T] {
	r := &Ref[T]{
		watchers: make(map[string]WatchFunc[T]),
	}
	r.value.Store(&initial)

	return r
}

// Read returns the current value. It never blocks, not even while an update
// is in flight.
func (r *Ref[T]) Read() T {
	return *r.value.Load()
}

// Update atomically replaces the current value with fn(current) and returns
// the updated value. fn must be pure: it may run with the update lock held
// and must not touch the reference itself.
//
// Updates are serialized. Registered watchers are invoked synchronously on
// the calling goroutine after the updated value is visible to Read, so by the
// time Update returns every watcher has observed this update.
func (r *Ref[T]) Update(fn func(T) T) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.value.Load()
	updated := fn(old)
	r.value.Store(&updated)

	r.notify(old, updated)

	return updated
}

// AddWatcher registers fn under key. Registering an existing key replaces
// the previous callback. The watcher only sees updates applied after
// registration; see WaitUntil for the check-then-watch pattern that closes
// the resulting race.
func (r *Ref[T]) AddWatcher(key string, fn WatchFunc[T]) {
	r.watchersMu.Lock()
	defer r.watchersMu.Unlock()

	r.watchers[key] = fn
}

// RemoveWatcher deregisters key. Removing an unknown key is a no-op.
func (r *Ref[T]) RemoveWatcher(key string) {
	r.watchersMu.Lock()
	defer r.watchersMu.Unlock()

	delete(r.watchers, key)
}

func (r *Ref[T]) notify(old, updated T) {
	r.watchersMu.Lock()

	keys := make([]string, 0, len(r.watchers))
	fns := make([]WatchFunc[T], 0, len(r.watchers))

	for key, fn := range r.watchers {
		keys = append(keys, key)
		fns = append(fns, fn)
	}

	r.watchersMu.Unlock()

	// Invoked without the watcher lock so callbacks can deregister
	// themselves or register new watchers.
	for i, fn := range fns {
		fn(keys[i], r, old, updated)
	}
}

package watch

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one observed update.
type Event[T any] struct {
	Old T
	New T
}

// Watch subscribes a best-effort stream of update events and returns:
//   - a channel that emits an Event per observed update
//   - a stop function to unsubscribe (must be called once)
//
// The stream is designed for reload/invalidation signals rather than durable
// delivery: when the subscriber is slow the channel buffer fills and further
// events are dropped. buffer values <= 0 default to 1. The channel is closed
// by stop.
func (r *Ref[T]) Watch(buffer int) (<-chan Event[T], func()) {
	if buffer <= 0 {
		buffer = 1
	}

	var (
		mu     sync.Mutex
		closed bool
	)

	ch := make(chan Event[T], buffer)
	key := uuid.NewString()

	r.AddWatcher(key, func(_ string, _ *Ref[T], old, updated T) {
		mu.Lock()
		defer mu.Unlock()

		if closed {
			return
		}

		select {
		case ch <- Event[T]{Old: old, New: updated}:
		default:
		}
	})

	return ch, func() {
		r.RemoveWatcher(key)

		mu.Lock()
		defer mu.Unlock()

		if !closed {
			closed = true
			close(ch)
		}
	}
}

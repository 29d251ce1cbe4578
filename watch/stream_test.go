package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_DeliverAndStop(t *testing.T) {
	r := NewRef(0)

	ch, stop := r.Watch(1)

	r.Update(func(int) int { return 42 })

	select {
	case ev := <-ch:
		require.Equal(t, Event[int]{Old: 0, New: 42}, ev)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	stop()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	// Stop tolerates a second call.
	stop()
}

func TestWatch_DropsWhenSubscriberIsSlow(t *testing.T) {
	r := NewRef(0)

	ch, stop := r.Watch(1)
	defer stop()

	r.Update(func(int) int { return 1 })
	r.Update(func(int) int { return 2 })

	select {
	case ev := <-ch:
		assert.Equal(t, Event[int]{Old: 0, New: 1}, ev)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first event")
	}

	// The second event was dropped, not queued.
	select {
	case ev := <-ch:
		t.Fatalf("unexpected buffered event: %+v", ev)
	default:
	}
}

func TestWatch_StopDuringUpdates(t *testing.T) {
	r := NewRef(0)

	ch, stop := r.Watch(1)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := range 100 {
			r.Update(func(int) int { return i })
		}
	}()

	// Unsubscribing while updates are in flight must neither panic nor
	// deliver on the closed channel.
	stop()

	<-done

	for range ch {
	}
}

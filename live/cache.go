// Package live provides a cache for a single periodically recomputed value.
//
// A Cache runs a computation on a fixed-rate background schedule and
// publishes each result into a watch.Ref-backed slot, so readers get a recent
// precomputed value without recomputing it themselves. Blocking readers are
// woken through the reference's change notification; there is no polling.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/zhenzou/executors"
	"golang.org/x/sync/singleflight"

	"github.com/looplj/syncx/internal/log"
	"github.com/looplj/syncx/watch"
)

// ComputeFunc produces the cached value. It runs on the cache's background
// schedule (or on the caller for Refresh), never concurrently with itself for
// a given cache, and should be fast relative to the cache's period: slow
// computations queue behind one another without bound.
type ComputeFunc[T any] func(ctx context.Context) (T, error)

// state is the cache slot: NotReady until the first computation completes,
// Ready with the latest result from then on. It never goes back to NotReady.
type state[T any] struct {
	ready bool
	value T
}

// Options defines the configuration for Cache.
type Options[T any] struct {
	// Name is used for logging purposes.
	Name string

	// Compute produces the cached value. Required.
	Compute ComputeFunc[T]

	// Period is the fixed-rate recomputation cadence. Required, positive.
	// The nominal start of invocation k is start + k*Period regardless of
	// how long earlier invocations took.
	Period time.Duration

	// ComputeTimeout bounds each computation. Defaults to 30s.
	ComputeTimeout time.Duration

	// Executor optionally shares a scheduled executor across caches, e.g.
	// the one provided by Module. When nil the cache owns a dedicated
	// single-worker executor and Stop shuts it down.
	Executor executors.ScheduledExecutor
}

// Cache holds a single periodically recomputed value.
//
// The background schedule starts lazily on the first read access of any form
// and, unless Stop is called, lives for the rest of the process. Its worker
// goroutines never prevent process exit.
type Cache[T any] struct {
	name    string
	compute ComputeFunc[T]
	period  time.Duration
	timeout time.Duration

	state *watch.Ref[state[T]]

	executor     executors.ScheduledExecutor
	ownsExecutor bool

	// runMu serializes computations even on a shared executor, so results
	// are always published in invocation order.
	runMu sync.Mutex
	sf    singleflight.Group

	startOnce sync.Once
	stopOnce  sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCache creates a new Cache with the given options. The background
// schedule is not started yet; the first read access starts it.
func NewCache[T any](opts Options[T]) *Cache[T] {
	if opts.Compute == nil {
		panic("live.Cache: Compute is required")
	}

	if opts.Period <= 0 {
		panic("live.Cache: Period must be greater than zero")
	}

	timeout := opts.ComputeTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Cache[T]{
		name:     opts.Name,
		compute:  opts.Compute,
		period:   opts.Period,
		timeout:  timeout,
		state:    watch.NewRef(state[T]{}),
		executor: opts.Executor,
	}

	if c.executor == nil {
		c.executor = executors.NewPoolScheduleExecutor(
			executors.WithMaxConcurrent(1),
			executors.WithErrorHandler(&errorHandler{}),
		)
		c.ownsExecutor = true
	}

	return c
}

// Get blocks until the first computation has completed and returns the most
// recently published value. After the first completion it returns
// immediately. There is no timeout; callers wanting bounded waits should use
// GetContext.
func (c *Cache[T]) Get() T {
	c.ensureStarted()

	s := watch.WaitUntil(c.state, func(s state[T]) bool { return s.ready })

	return s.value
}

// GetContext is Get with cancellation.
func (c *Cache[T]) GetContext(ctx context.Context) (T, error) {
	c.ensureStarted()

	s, err := watch.WaitUntilContext(ctx, c.state, func(s state[T]) bool { return s.ready })
	if err != nil {
		var zero T

		return zero, err
	}

	return s.value, nil
}

// GetOrDefault returns the most recently published value, or def when no
// computation has completed yet. It never blocks.
func (c *Cache[T]) GetOrDefault(def T) T {
	c.ensureStarted()

	if s := c.state.Read(); s.ready {
		return s.value
	}

	return def
}

// Refresh runs one computation synchronously on the caller and publishes the
// result. Concurrent Refresh calls are deduplicated to a single computation.
// It does not start the background schedule.
func (c *Cache[T]) Refresh(ctx context.Context) error {
	_, err, shared := c.sf.Do("refresh", func() (any, error) {
		return nil, c.recompute(ctx)
	})

	if shared {
		log.Debug(ctx, "recompute cache refresh deduplicated via singleflight", log.String("name", c.name))
	}

	return err
}

// Stop cancels the background schedule and, when the cache owns its
// executor, shuts it down. Stopping is optional: a cache that is never
// stopped simply keeps recomputing for the life of the process.
func (c *Cache[T]) Stop(ctx context.Context) error {
	var err error

	c.stopOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}

		if c.ownsExecutor {
			err = c.executor.Shutdown(ctx)
		}

		log.Info(ctx, "recompute cache stopped",
			log.String("name", c.name),
			log.Bool("owns_executor", c.ownsExecutor))
	})

	return err
}

// ensureStarted starts the schedule exactly once across all read accessors,
// no matter how many goroutines race here: one computation immediately, then
// one every period.
func (c *Cache[T]) ensureStarted() {
	c.startOnce.Do(func() {
		ctx := context.Background()

		if _, err := c.executor.ScheduleFunc(c.runScheduled, 0); err != nil {
			log.Error(ctx, "recompute cache failed to schedule initial computation",
				log.String("name", c.name), log.Cause(err))
		}

		cancel, err := c.executor.ScheduleFuncAtFixRate(c.runScheduled, c.period)
		if err != nil {
			log.Error(ctx, "recompute cache failed to start schedule",
				log.String("name", c.name), log.Cause(err))

			return
		}

		c.mu.Lock()
		c.cancel = cancel
		c.mu.Unlock()

		log.Debug(ctx, "recompute cache schedule started",
			log.String("name", c.name),
			log.Duration("period", c.period))
	})
}

func (c *Cache[T]) runScheduled(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(context.Background(), "recompute cache computation panicked",
				log.String("name", c.name),
				log.Any("panic", r))
		}
	}()

	if err := c.recompute(ctx); err != nil {
		// A failed computation never publishes; the next tick is the retry.
		log.Warn(ctx, "recompute cache computation failed, keeping previous value",
			log.String("name", c.name), log.Cause(err))
	}
}

func (c *Cache[T]) recompute(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v, err := c.compute(ctx)
	if err != nil {
		return err
	}

	c.state.Update(func(state[T]) state[T] {
		return state[T]{ready: true, value: v}
	})

	log.Debug(ctx, "recompute cache published new value",
		log.String("name", c.name),
		log.Time("published_at", time.Now()))

	return nil
}

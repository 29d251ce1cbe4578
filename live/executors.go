package live

import (
	"context"
	"reflect"

	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/syncx/internal/log"
)

type errorHandler struct{}

func (h *errorHandler) CatchError(runnable executors.Runnable, err error) {
	log.Error(context.Background(), "run runnable error", log.Cause(err))
}

type rejectionHandler struct{}

func (h *rejectionHandler) RejectExecution(runnable executors.Runnable, e executors.Executor) error {
	log.Error(context.Background(), "runnable rejection by executor",
		log.String("runnable", reflect.ValueOf(runnable).String()))

	return nil
}

// NewScheduledExecutor returns an executor suitable for sharing across many
// caches via Options.Executor. Callers own its shutdown.
func NewScheduledExecutor() executors.ScheduledExecutor {
	return executors.NewPoolScheduleExecutor(
		executors.WithMaxConcurrent(64),
		executors.WithMaxBlockingTasks(1024),
		executors.WithErrorHandler(&errorHandler{}),
		executors.WithRejectionHandler(&rejectionHandler{}),
	)
}

// Module provides a shared ScheduledExecutor whose shutdown is bound to the
// application lifecycle.
var Module = fx.Module("live",
	fx.Provide(func(lc fx.Lifecycle) executors.ScheduledExecutor {
		executor := NewScheduledExecutor()

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return executor.Shutdown(ctx)
			},
		})

		return executor
	}),
)

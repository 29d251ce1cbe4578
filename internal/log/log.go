// Package log is a thin context-aware wrapper around zap.
//
// The package-level logger defaults to a no-op logger so that importing
// applications stay quiet unless they opt in via SetLogger. Hooks registered
// with RegisterHook derive additional fields from the context on every call.
package log

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Field is re-exported so callers never import zap directly.
type Field = zap.Field

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// SetLogger replaces the process-wide logger. Safe for concurrent use.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	global.Store(logger)
}

// GetLogger returns the current process-wide logger.
func GetLogger() *zap.Logger {
	return global.Load()
}

// DebugEnabled reports whether debug-level logging is enabled.
func DebugEnabled(ctx context.Context) bool {
	return global.Load().Core().Enabled(zap.DebugLevel)
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	global.Load().Debug(msg, withHookFields(ctx, msg, fields)...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	global.Load().Info(msg, withHookFields(ctx, msg, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	global.Load().Warn(msg, withHookFields(ctx, msg, fields)...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	global.Load().Error(msg, withHookFields(ctx, msg, fields)...)
}

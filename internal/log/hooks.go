package log

import (
	"context"
	"sync"
)

// Hook derives extra fields from the context for every log call.
type Hook interface {
	Apply(ctx context.Context, msg string) []Field
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []Field

func (f HookFunc) Apply(ctx context.Context, msg string) []Field {
	return f(ctx, msg)
}

var (
	hooksMu sync.RWMutex
	hooks   []Hook
)

// RegisterHook appends a hook applied to all subsequent log calls.
func RegisterHook(h Hook) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	hooks = append(hooks, h)
}

func withHookFields(ctx context.Context, msg string, fields []Field) []Field {
	hooksMu.RLock()
	registered := hooks
	hooksMu.RUnlock()

	if len(registered) == 0 {
		return fields
	}

	for _, h := range registered {
		fields = append(fields, h.Apply(ctx, msg)...)
	}

	return fields
}

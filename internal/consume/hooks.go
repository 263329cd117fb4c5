package consume

import (
	"sync"

	"github.com/quarkmq/consumer/internal/message"
)

// HookContext carries batch context through a before/after hook pair.
// Success and Status are only meaningful in the after call.
type HookContext struct {
	Group   string
	Queue   message.QueueIdentity
	Msgs    []*message.Message
	Success bool
	Status  string
}

// Hook observes consumption around the listener invocation.
type Hook interface {
	Name() string
	Before(ctx *HookContext)
	After(ctx *HookContext)
}

// HookRegistry holds registered hooks. Absence of hooks must not affect
// the pipeline, so every call site checks HasHooks first.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks []Hook
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// Register appends a hook.
func (r *HookRegistry) Register(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
}

// HasHooks reports whether any hook is registered.
func (r *HookRegistry) HasHooks() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks) > 0
}

// ExecuteBefore runs every registered before hook. A panicking hook is
// isolated so it cannot break consumption.
func (r *HookRegistry) ExecuteBefore(ctx *HookContext) {
	r.mu.RLock()
	hooks := r.hooks
	r.mu.RUnlock()
	for _, h := range hooks {
		runHook(func() { h.Before(ctx) })
	}
}

// ExecuteAfter runs every registered after hook.
func (r *HookRegistry) ExecuteAfter(ctx *HookContext) {
	r.mu.RLock()
	hooks := r.hooks
	r.mu.RUnlock()
	for _, h := range hooks {
		runHook(func() { h.After(ctx) })
	}
}

func runHook(f func()) {
	defer func() {
		_ = recover()
	}()
	f()
}

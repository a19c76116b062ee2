// Package atexit runs registered hooks once when the process terminates normally.
//
// Go has no C-style atexit: main returning or os.Exit skips deferred work in other
// goroutines. Programs that want exit hooks call Run (usually deferred in main) or Exit
// instead of os.Exit. Run is idempotent, so both may be wired without double execution.
package atexit

import (
	"os"
	"sync"

	"github.com/joshuapare/memtrack/internal/logger"
)

// Hooks is an ordered set of exit hooks.
type Hooks struct {
	mu    sync.Mutex
	hooks []func()
	once  sync.Once
	done  bool
}

// Register appends fn. Hooks registered after Run has started are not executed.
func (h *Hooks) Register(fn func()) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		logger.Warn("exit hook registered after exit processing", "hooks", len(h.hooks))
		return
	}
	h.hooks = append(h.hooks, fn)
}

// Len returns the number of pending hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Run executes every hook in reverse registration order, exactly once.
func (h *Hooks) Run() {
	h.once.Do(func() {
		h.mu.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.done = true
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			runHook(hooks[i])
		}
	})
}

// runHook isolates a panicking hook so the remaining hooks still run.
func runHook(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("exit hook panicked", "panic", r)
		}
	}()
	fn()
}

var (
	std    = &Hooks{}
	osExit = os.Exit
)

// Register adds fn to the process hooks.
func Register(fn func()) { std.Register(fn) }

// Run executes the process hooks once.
func Run() { std.Run() }

// Exit runs the process hooks and terminates with code.
func Exit(code int) {
	std.Run()
	osExit(code)
}

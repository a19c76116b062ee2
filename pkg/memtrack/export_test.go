package memtrack

// Reset drops the default tracker so each test can configure its own.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	std = nil
}

// SwapRegisterExit replaces the exit-hook registrar and returns a function restoring it.
func SwapRegisterExit(fn func(func())) (restore func()) {
	saved := registerExit
	registerExit = fn
	return func() { registerExit = saved }
}

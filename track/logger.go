package track

// Logger is the diagnostic channel the tracker writes to. *testing.T satisfies it.
type Logger interface {
	Logf(format string, args ...any)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(format string, args ...any)

// Logf calls f.
func (f LoggerFunc) Logf(format string, args ...any) { f(format, args...) }

// Discard drops every message.
var Discard Logger = LoggerFunc(func(string, ...any) {})

package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Banner is the heading printed ahead of tracker diagnostics when requested.
const Banner = "Memory Leaks Utility"

const component = "memtrack"

// Diagnostics renders printf-style tracker messages onto a slog logger at warn level.
type Diagnostics struct {
	Log    *slog.Logger // nil: use L at call time
	Banner bool         // prefix every message with Banner
}

// Logf renders format and emits it as one record.
func (d *Diagnostics) Logf(format string, args ...any) {
	l := d.Log
	if l == nil {
		l = L
	}
	l.Warn(render(d.Banner, format, args), "component", component)
}

// ZapDiagnostics renders printf-style tracker messages through zap.
type ZapDiagnostics struct {
	s      *zap.SugaredLogger
	banner bool
}

// NewZap adapts z. A nil z discards.
func NewZap(z *zap.Logger, banner bool) *ZapDiagnostics {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapDiagnostics{s: z.Sugar().With("component", component), banner: banner}
}

// Logf renders format and emits it at warn level.
func (d *ZapDiagnostics) Logf(format string, args ...any) {
	d.s.Warn(render(d.banner, format, args))
}

// Sync flushes buffered zap output.
func (d *ZapDiagnostics) Sync() error { return d.s.Sync() }

// NewZapLogger builds a zap logger writing to stderr at the given slog level.
func NewZapLogger(level slog.Level, json bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if json {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func render(banner bool, format string, args []any) string {
	msg := fmt.Sprintf(format, args...)
	if banner {
		return Banner + "\n\n" + msg
	}
	return msg
}

// Package logger owns the diagnostic channel: a process-wide slog logger plus adapters that
// let the tracking layer print through slog or zap.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.DiscardHandler)

const (
	logPrefix     = "memtrack-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatZap  = "zap"
)

// ErrUnknownFormat indicates an output format other than text, json or zap.
var ErrUnknownFormat = errors.New("logger: unknown format")

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	LogDir  string     // Directory for dated log files. Empty: write to Writer
	Writer  io.Writer  // Destination when LogDir is empty. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo
	Format  string     // FormatText (default) or FormatJSON
}

// New builds a slog logger from opts without touching L.
// The returned close function releases the log file, if one was opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	nop := func() error { return nil }
	if !opts.Enabled {
		return slog.New(slog.DiscardHandler), nop, nil
	}

	w := opts.Writer
	closeFn := nop
	if opts.LogDir != "" {
		f, err := openDated(opts.LogDir)
		if err != nil {
			return nil, nop, err
		}
		w, closeFn = f, f.Close
	}
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	switch opts.Format {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, hopts)), closeFn, nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, hopts)), closeFn, nil
	default:
		_ = closeFn()
		return nil, nop, fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
	}
}

// Init configures L. Call from main() before any log calls.
func Init(opts Options) error {
	l, _, err := New(opts)
	if err != nil {
		return err
	}
	L = l
	return nil
}

// openDated opens today's log file under logDir, cleaning up old ones first.
func openDated(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	// Clean up old logs (best-effort, ignore errors)
	cleanOldLogs(logDir, time.Now())

	filename := filepath.Join(logDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// Parse date from filename: memtrack-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logger: bad level %q: %w", s, err)
	}
	return lvl, nil
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }

/*
Package memtrack is the process-wide entry point to the allocation-tracking layer.

# Quick Start

	func main() {
	    memtrack.Enable()
	    p := memtrack.Malloc(64)
	    ...
	    memtrack.Free(p)
	    memtrack.Exit(0) // runs the leak report, then exits
	}

Every Malloc, Calloc and Realloc records the caller's file and line, so the leak report
points at the line that produced each surviving block.

# Configuration

The default tracker is built on first use from the environment (see internal/config):
MEMTRACK_ENABLED, MEMTRACK_BACKEND, MEMTRACK_LIMIT, MEMTRACK_LOG_FORMAT, MEMTRACK_LOG_LEVEL,
MEMTRACK_LOG_DIR. With MEMTRACK_ENABLED=false every call passes straight to the raw
allocator. Call Configure before any other function to supply options directly.
*/
package memtrack

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/joshuapare/memtrack/internal/atexit"
	"github.com/joshuapare/memtrack/internal/config"
	"github.com/joshuapare/memtrack/internal/logger"
	"github.com/joshuapare/memtrack/internal/rawmem"
	"github.com/joshuapare/memtrack/track"
)

// ErrAlreadyInitialized is returned by Configure once the default tracker exists.
var ErrAlreadyInitialized = errors.New("memtrack: default tracker already initialized")

var (
	mu  sync.Mutex
	std *track.Tracker

	registerExit = atexit.Register
)

// Configure installs the default tracker. It must run before the first use of Default.
func Configure(opts track.Options) error {
	mu.Lock()
	defer mu.Unlock()
	if std != nil {
		return ErrAlreadyInitialized
	}
	std = track.New(opts)
	return nil
}

// Default returns the process-wide tracker, building it from the environment on first use.
func Default() *track.Tracker {
	mu.Lock()
	defer mu.Unlock()
	if std == nil {
		std = fromEnv()
	}
	return std
}

func fromEnv() *track.Tracker {
	cfg, err := config.FromEnv()
	initLogging(cfg)
	if err != nil {
		logger.Warn("memtrack: falling back to defaults", "error", err)
		cfg = config.Default()
	}
	opts, err := Options(cfg)
	if err != nil {
		logger.Warn("memtrack: falling back to defaults", "error", err)
		cfg = config.Default()
		opts, _ = Options(cfg)
	}
	logger.Debug("memtrack: default tracker ready",
		"enabled", opts.Enabled, "backend", cfg.Backend, "limit", cfg.Limit, "format", cfg.LogFormat)
	return track.New(opts)
}

// initLogging points the package logger at the destination cfg names. cfg may be only
// partly valid, so an unusable format or directory degrades to text on stderr.
func initLogging(cfg config.Config) {
	format := cfg.LogFormat
	if format == logger.FormatZap {
		format = logger.FormatText
	}
	err := logger.Init(logger.Options{
		Enabled: true,
		LogDir:  cfg.LogDir,
		Level:   cfg.LogLevel,
		Format:  format,
	})
	if err != nil {
		_ = logger.Init(logger.Options{Enabled: true, Level: cfg.LogLevel})
		logger.Warn("memtrack: logging to stderr", "error", err)
	}
}

// Options turns a Config into tracker options. Diagnostics go to stderr (or LogDir) with the
// utility banner.
func Options(cfg config.Config) (track.Options, error) {
	if err := cfg.Validate(); err != nil {
		return track.Options{}, err
	}
	raw, err := rawmem.New(cfg.Backend, cfg.Limit)
	if err != nil {
		return track.Options{}, err
	}
	diag, err := Diagnostics(cfg)
	if err != nil {
		return track.Options{}, err
	}
	return track.Options{Enabled: cfg.TrackingEnabled, Raw: raw, Logger: diag}, nil
}

// Diagnostics builds the tracker logger selected by cfg.LogFormat.
func Diagnostics(cfg config.Config) (track.Logger, error) {
	if cfg.LogFormat == logger.FormatZap {
		z, err := logger.NewZapLogger(cfg.LogLevel, false)
		if err != nil {
			return nil, fmt.Errorf("memtrack: zap logger: %w", err)
		}
		d := logger.NewZap(z, true)
		registerExit(func() { _ = d.Sync() })
		return d, nil
	}
	l, closeFn, err := logger.New(logger.Options{
		Enabled: true,
		LogDir:  cfg.LogDir,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	registerExit(func() { _ = closeFn() })
	return &logger.Diagnostics{Log: l, Banner: true}, nil
}

// Enable installs the leak report for normal process exit. Repeated calls install it once.
func Enable() { Default().Enable() }

// Malloc allocates size bytes, recording the caller.
func Malloc(size uint64) unsafe.Pointer {
	return Default().Allocate(size, track.Caller(1))
}

// Calloc allocates count*size zeroed bytes, recording the caller.
func Calloc(count, size uint64) unsafe.Pointer {
	return Default().AllocateZeroed(count, size, track.Caller(1))
}

// Free releases p.
func Free(p unsafe.Pointer) { Default().Release(p) }

// Realloc resizes p, recording the caller.
func Realloc(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return Default().Reallocate(p, size, track.Caller(1))
}

// Finish runs the leak report now and returns it.
func Finish() *track.Report { return Default().Finish() }

// Run executes the exit hooks, including the leak report if Enable was called. Defer it in
// main when the program ends by returning.
func Run() { atexit.Run() }

// Exit runs the exit hooks and terminates the process with code.
func Exit(code int) { atexit.Exit(code) }

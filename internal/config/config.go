// Package config resolves tracker settings once at startup from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joshuapare/memtrack/internal/logger"
	"github.com/joshuapare/memtrack/internal/rawmem"
)

// Environment variables read by FromEnv.
const (
	EnvEnabled   = "MEMTRACK_ENABLED"    // bool, default true
	EnvBackend   = "MEMTRACK_BACKEND"    // heap | mmap | arena
	EnvLimit     = "MEMTRACK_LIMIT"      // bytes, 0 = unlimited (arena: capacity)
	EnvLogFormat = "MEMTRACK_LOG_FORMAT" // text | json | zap
	EnvLogLevel  = "MEMTRACK_LOG_LEVEL"  // debug | info | warn | error
	EnvLogDir    = "MEMTRACK_LOG_DIR"    // write dated log files here instead of stderr
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the tracker settings.
type Config struct {
	TrackingEnabled bool
	Backend         rawmem.Kind
	Limit           uint64
	LogFormat       string
	LogLevel        slog.Level
	LogDir          string
}

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		TrackingEnabled: true,
		Backend:         rawmem.KindHeap,
		LogFormat:       logger.FormatText,
		LogLevel:        slog.LevelInfo,
	}
}

// FromEnv reads the process environment.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvEnabled, v)
		}
		cfg.TrackingEnabled = b
	}
	if v, ok := lookup(EnvBackend); ok {
		cfg.Backend = rawmem.Kind(v)
	}
	if v, ok := lookup(EnvLimit); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvLimit, v)
		}
		cfg.Limit = n
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}
	if v, ok := lookup(EnvLogDir); ok {
		cfg.LogDir = v
	}

	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, err := rawmem.ParseKind(string(c.Backend)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "", logger.FormatText, logger.FormatJSON, logger.FormatZap:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

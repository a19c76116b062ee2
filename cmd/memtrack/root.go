package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memtrack/internal/config"
	"github.com/joshuapare/memtrack/internal/logger"
	"github.com/joshuapare/memtrack/internal/rawmem"
	"github.com/joshuapare/memtrack/pkg/memtrack"
	"github.com/joshuapare/memtrack/track"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	noColor   bool
	backend   string
	limit     uint64
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "memtrack",
	Short: "Exercise the allocation-tracking layer and print leak reports",
	Long: `memtrack drives the allocation-tracking layer against a chosen raw allocator
and prints the leak report produced at shutdown. It is useful to check the tracker
itself and to see what its diagnostics look like.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&backend, "backend", string(rawmem.KindHeap), "Raw allocator: heap, mmap or arena")
	rootCmd.PersistentFlags().
		Uint64Var(&limit, "limit", 0, "Byte limit for heap/mmap, capacity for arena (0 = default)")
	rootCmd.PersistentFlags().
		StringVar(&logFormat, "log-format", logger.FormatText, "Diagnostics format: text, json or zap")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logLevel is Warn, or Debug with --verbose.
func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// initLogging sets up the global logger on stderr from the flags. --quiet silences it.
func initLogging() error {
	format := logFormat
	if format == logger.FormatZap {
		format = logger.FormatText
	}
	return logger.Init(logger.Options{
		Enabled: !quiet,
		Level:   logLevel(),
		Format:  format,
	})
}

// newTracker builds a tracker from the global flags. Diagnostics go to stderr.
func newTracker() (*track.Tracker, error) {
	cfg := config.Default()
	cfg.Backend = rawmem.Kind(backend)
	cfg.Limit = limit
	cfg.LogFormat = logFormat
	cfg.LogLevel = logLevel()

	opts, err := memtrack.Options(cfg)
	if err != nil {
		return nil, err
	}
	if quiet {
		opts.Logger = track.Discard
	}
	logger.Debug("tracker ready", "backend", cfg.Backend, "limit", cfg.Limit, "format", cfg.LogFormat)
	return track.New(opts), nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

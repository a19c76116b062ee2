package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memtrack/internal/logger"
)

func TestInitLogging(t *testing.T) {
	saved := logger.L
	t.Cleanup(func() { logger.L = saved })
	ctx := context.Background()

	tests := []struct {
		name      string
		setup     func()
		wantErr   bool
		wantDebug bool
		wantWarn  bool
	}{
		{name: "default", setup: func() {}, wantWarn: true},
		{name: "verbose", setup: func() { verbose = true }, wantDebug: true, wantWarn: true},
		{name: "quiet", setup: func() { quiet = true }},
		{name: "json", setup: func() { logFormat = logger.FormatJSON }, wantWarn: true},
		{name: "zap uses text", setup: func() { logFormat = logger.FormatZap }, wantWarn: true},
		{name: "bad format", setup: func() { logFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			tt.setup()

			err := initLogging()
			if tt.wantErr {
				require.ErrorIs(t, err, logger.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logger.L.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantWarn, logger.L.Enabled(ctx, slog.LevelWarn))
		})
	}
}

func TestPersistentPreRunInitializesLogging(t *testing.T) {
	saved := logger.L
	t.Cleanup(func() { logger.L = saved })
	resetFlags(t)
	verbose = true

	require.NotNil(t, rootCmd.PersistentPreRunE)
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.True(t, logger.L.Enabled(context.Background(), slog.LevelDebug))
}

package logging_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/pkg/logging"
)

func TestFromContext(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("returns stored logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		logging.FromContext(ctx).Info().Msg("hello")
		assert.True(t, tl.Contains("hello"))
	})
}

func TestContextFields(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithMonth(ctx, "2024-01")
	ctx = logging.WithFile(ctx, "score_quality.csv")

	logging.FromContext(ctx).Warn().Msg("skipped")

	require.Len(t, tl.Lines(), 1)
	assert.True(t, tl.Contains(`"run_id":"run-1"`))
	assert.True(t, tl.Contains(`"month":"2024-01"`))
	assert.True(t, tl.Contains(`"file":"score_quality.csv"`))
	assert.Equal(t, "run-1", logging.RunID(ctx))
}

func TestNewLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"default", "", zerolog.InfoLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"warning alias", "warning", zerolog.WarnLevel},
		{"disabled", "off", zerolog.Disabled},
		{"unknown", "loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tt.level,
				Format: "json",
				Output: "discard",
			})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	logging.Default().Error().Str("month", "2024-02").Msg("no valid data")
	assert.True(t, tl.Contains("no valid data"))
}

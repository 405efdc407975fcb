package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level Level) (*Logger, *observer.ObservedLogs) {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	core, logs := observer.New(atomicLevel)
	return &Logger{zapLogger: zap.New(core), zapLevel: atomicLevel}, logs
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"fatal":   LevelFatal,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFieldsReachZap(t *testing.T) {
	logger, logs := newObserved(LevelDebug)

	logger.With(Component("ticker")).Error("callback failed",
		Tick(42),
		Float64("radius", 500),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "ticker", ctx["component"])
	assert.Equal(t, uint64(42), ctx["tick"])
	assert.Equal(t, 500.0, ctx["radius"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestSetLevelFilters(t *testing.T) {
	logger, logs := newObserved(LevelDebug)

	logger.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, logger.GetLevel())

	logger.Log(LevelInfo, "dropped")
	logger.Log(LevelWarn, "kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestNilErrorIsSkipped(t *testing.T) {
	logger, logs := newObserved(LevelDebug)

	logger.Info("no error", Error(nil))

	require.Equal(t, 1, logs.Len())
	_, present := logs.All()[0].ContextMap()["error"]
	assert.False(t, present)
}

func TestNopDiscards(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.Info("nothing", String("k", "v"))
		logger.With(Int("n", 1)).Warn("still nothing")
	})
}

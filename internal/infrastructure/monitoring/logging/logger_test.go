package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedLogger returns a Logger whose output is captured for assertions.
func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_Defaults(t *testing.T) {
	// Empty config must still produce a working logger.
	l, err := NewLogger(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	l, logs := newObservedLogger()

	l.Info("matrix built",
		String("builder", "vectorized"),
		Int("cells", 100),
		Float64("duration_ms", 0.42),
		Bool("cached", false),
		Duration("ttl", 15*time.Minute),
		Err(errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "matrix built", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "vectorized", ctx["builder"])
	assert.Equal(t, int64(100), ctx["cells"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestLogger_With(t *testing.T) {
	l, logs := newObservedLogger()
	child := l.With(String("component", "scorer"))
	child.Info("scored")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scorer", entries[0].ContextMap()["component"])
}

func TestLogger_Named(t *testing.T) {
	l, logs := newObservedLogger()
	l.Named("http").Info("served")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http", entries[0].LoggerName)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg", String("k", "v"))
		l.Warn("msg")
		l.Error("msg")
		l.With(Int("n", 1)).Named("x").Info("msg")
	})
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newObservedLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// SetDefault(nil) must be a no-op.
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

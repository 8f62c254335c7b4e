package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*MedMeshLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Output = buf
	cfg.Level = level
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestMedMeshLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithComponent("router").WithRequest("req-1").Info("router.classified", "label", "icd10")

	entry := decodeLine(t, buf)
	assert.Equal(t, "router.classified", entry["msg"])
	assert.Equal(t, "router", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "icd10", entry["label"])
}

func TestMedMeshLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestMedMeshLogger_WithContextDoesNotLeak(t *testing.T) {
	base, buf := newBufferLogger(LogLevelInfo)
	_ = base.WithContext("task", "soap")

	base.Info("plain")
	entry := decodeLine(t, buf)
	_, ok := entry["task"]
	assert.False(t, ok)
}

func TestMedMeshLogger_LogLLMCall(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogLLMCall("gpt-4o-mini", 42, time.Second, false, errors.New("boom"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "LLM call failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Info("x", "k", "v")
	l.Warn("x")
	l.Error("x")
}

func TestHelpers_UseStructuredLogger(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	scoped := ForComponent(ForRequest(l, "req-1"), "agent")
	NodeExecution(scoped, "router", time.Millisecond, "")

	entry := decodeLine(t, buf)
	assert.Equal(t, "Node execution completed", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "agent", entry["component"])
	assert.Equal(t, "router", entry["node"])
}

func TestHelpers_PlainLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.Equal(t, l, ForRequest(l, "req-1"))
	assert.NotPanics(t, func() {
		LLMCall(l, "mock", 0, time.Millisecond, errors.New("boom"))
		NodeExecution(l, "soap", time.Millisecond, "boom")
	})
}

func TestErrorWithStack(t *testing.T) {
	t.Run("medmesh logger", func(t *testing.T) {
		l, buf := newBufferLogger(LogLevelInfo)

		ErrorWithStack(l.WithComponent("engine"), errors.New("node router panicked: boom"), "engine.node.panic", "node", "router")

		entry := decodeLine(t, buf)
		assert.Equal(t, "engine.node.panic", entry["msg"])
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "engine", entry["component"])
		assert.Equal(t, "router", entry["node"])
		assert.Equal(t, "node router panicked: boom", entry["error"])
		assert.Contains(t, entry["stack_trace"], "goroutine")
	})

	t.Run("slog adapter", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := NewSlogAdapter(slog.New(slog.NewJSONHandler(buf, nil)))

		ErrorWithStack(l, errors.New("boom"), "engine.node.panic")

		entry := decodeLine(t, buf)
		assert.Equal(t, "boom", entry["error"])
		assert.Contains(t, entry["stack_trace"], "goroutine")
	})
}

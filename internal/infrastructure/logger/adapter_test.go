package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_KeyValueArgs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.Info("Navigating", "url", "https://example.com")
	log.WithField("component", "browser").Warn("retrying", "attempt", 2)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Navigating", entries[0].Message)
	assert.Equal(t, "https://example.com", entries[0].ContextMap()["url"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "browser", entries[1].ContextMap()["component"])
	assert.EqualValues(t, 2, entries[1].ContextMap()["attempt"])
}

func TestLoggerAdapter_WithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := New(zap.New(core)).WithFields(map[string]any{"run": "abc", "step": 3})

	log.Debug("hidden")
	log.Error("failed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["run"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["step"])
}

func TestNewLoggerAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerAdapter(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("loud", "key", "value")
	require.NoError(t, log.Close())

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "value")
}

func TestNewLoggerAdapter_InvalidLevel(t *testing.T) {
	_, err := NewLoggerAdapter(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewLoggerAdapter_WritesRunFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	log, err := NewLoggerAdapter(Options{Dir: dir, Name: "checkout flow", Output: &buf})
	require.NoError(t, err)

	log.Info("step done", "tool", "browser_click")
	require.NoError(t, log.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "*_checkout_flow.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"step done"`)
	assert.Contains(t, string(data), `"tool":"browser_click"`)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"login flow", "login_flow"},
		{"../etc/passwd", "etc_passwd"},
		{"", "run"},
		{"***", "run"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.in), tt.in)
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, Config{Level: slog.LevelInfo, Format: "text"})
	log.Debug("hidden")
	log.Info("search complete", slog.Int("results", 2))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "search complete")
	assert.Contains(t, out, "results=2")
	assert.NotContains(t, out, "\x1b[", "log files must not contain colour codes")
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, Config{Level: slog.LevelDebug, Format: "json"}).Debug("chat turn", slog.String("component", "backend"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "chat turn", record["msg"])
	assert.Equal(t, "backend", record["component"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestOpenAppendsToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "papertalk.log")
	log, closer, err := Open(path, Config{Level: slog.LevelInfo})
	require.NoError(t, err)
	log.Info("first")
	require.NoError(t, closer.Close())

	log, closer, err = Open(path, Config{Level: slog.LevelInfo})
	require.NoError(t, err)
	log.Info("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestOpenWithoutPathDiscards(t *testing.T) {
	t.Parallel()

	log, closer, err := Open("", Config{})
	require.NoError(t, err)
	log.Info("nowhere")
	assert.NoError(t, closer.Close())
}

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logSingleField(t *testing.T, key, value string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test", key, value)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRedactionSensitiveFields(t *testing.T) {
	t.Parallel()
	for _, key := range []string{"key", "Encryption_Key", "passphrase", "secret", "token", "password"} {
		out := logSingleField(t, key, "hunter2")
		assert.Equal(t, redacted, out[key], key)
	}
}

func TestNonSensitiveFieldsPassThrough(t *testing.T) {
	t.Parallel()
	out := logSingleField(t, "note_id", "42")
	assert.Equal(t, "42", out["note_id"])
}

func TestRedactionInGroupsAndWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil))).With("token", "abc")
	logger.Info("grouped", slog.Group("db", slog.String("key", "raw"), slog.String("path", "/tmp/x.db")))

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, redacted, out["token"])
	group := out["db"].(map[string]any)
	assert.Equal(t, redacted, group["key"])
	assert.Equal(t, "/tmp/x.db", group["path"])
}

func TestRedactionScrubsKeyFromDSN(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	dsn := "file:/tmp/notes.db?_pragma_key=Abc123xyz&_busy_timeout=5000"
	logger.Warn("open failed for "+dsn,
		"dsn", dsn,
		"error", errors.New("sqlite open "+dsn+": file is not a database"),
	)

	assert.NotContains(t, buf.String(), "Abc123xyz")
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "file:/tmp/notes.db?_pragma_key=[REDACTED]&_busy_timeout=5000", out["dsn"])
	assert.Contains(t, out["error"], "file is not a database")
	assert.Contains(t, out["msg"], "_pragma_key=[REDACTED]")
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	t.Parallel()
	var debug, warn bytes.Buffer
	logger := slog.New(NewTeeHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	))
	logger.Debug("detail")
	logger.Warn("careful")

	assert.Contains(t, debug.String(), "detail")
	assert.Contains(t, debug.String(), "careful")
	assert.NotContains(t, warn.String(), "detail")
	assert.Contains(t, warn.String(), "careful")
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "stickynotes.log")
	logger, closer, err := New(Options{Level: "debug", File: file, Console: &console})
	require.NoError(t, err)

	logger.Info("storage initialized", "path", "/tmp/notes.db", "key", "supersecret")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "storage initialized")
	assert.NotContains(t, console.String(), "supersecret")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	line := strings.TrimSpace(string(raw))
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	assert.Equal(t, "storage initialized", out["msg"])
	assert.Equal(t, redacted, out["key"])
}

func TestNewQuietWithoutFileDropsEverything(t *testing.T) {
	logger, closer, err := New(Options{Quiet: true})
	require.NoError(t, err)
	defer closer.Close()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogRotationCreatesNewFileAfterLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "stickynotes.log")
	writer, err := NewRotatingWriter(RotationConfig{File: logPath, MaxSizeMB: 1, MaxFiles: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chunk := bytes.Repeat([]byte("a"), 512*1024)
	for i := 0; i < 3; i++ {
		_, err := writer.Write(chunk)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(logPath))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2)
}

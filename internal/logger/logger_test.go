package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldash/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "json", slog.LevelInfo, false)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("dataset loaded", "rows", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dataset loaded", line["msg"])
	assert.Equal(t, 3.0, line["rows"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}`, line["time"])
}

func TestNewRejectsFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", slog.LevelInfo, false)
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "app.log")
	l, err := Setup(config.LogConfig{Level: "warn", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)
	assert.Same(t, l, slog.Default())
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))

	_, err = Setup(config.LogConfig{Level: "loud", Format: "text", Output: "stderr"})
	assert.Error(t, err)
	_, err = Setup(config.LogConfig{Level: "info", Format: "text", Output: "file"})
	assert.Error(t, err)
}

func TestHertzAdapter(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "text", slog.LevelDebug, false)
	require.NoError(t, err)

	a := NewHertzAdapter(l)
	a.Infof("listening on %s", ":8080")
	a.CtxWarnf(context.Background(), "slow request %d", 3)

	out := buf.String()
	assert.Contains(t, out, `msg="listening on :8080"`)
	assert.Contains(t, out, "component=hertz")
	assert.Contains(t, out, "level=WARN")
}

func TestContext(t *testing.T) {
	l := Discard()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

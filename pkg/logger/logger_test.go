package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	_, err := New(Config{Level: "info", Encoding: "xml"})
	require.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := New(Config{Level: "info", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Info("source loaded", zap.String("path", "a.txt"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"source loaded"`)
	assert.Contains(t, string(data), `"path":"a.txt"`)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	l, err := New(Config{Level: "warn", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestWithContextAddsRunFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.log")
	base, err := New(Config{Level: "debug", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), RunIDKey, "run-7")
	ctx = context.WithValue(ctx, StageKey, "merge")

	WithContext(ctx, base).Debug("merged")
	require.NoError(t, base.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-7"`)
	assert.Contains(t, string(data), `"stage":"merge"`)
}

func TestGetNeverReturnsNil(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotNil(t, With(zap.String("component", "test")))
}

package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/pool"
	"github.com/ajitpratap0/typesplit/pkg/testutil"
)

func loadAll(t *testing.T, paths []string, maxLineBytes int) []LoadResult {
	t.Helper()
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	workers := pool.NewWorkers(ctx, 2)
	defer workers.Close()

	results, err := Load(ctx, workers, paths, maxLineBytes)
	require.NoError(t, err)
	return results
}

func TestLoadKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testutil.WriteLines(t, dir, "a.txt", "a1", "a2"),
		testutil.WriteLines(t, dir, "b.txt", "b1"),
		testutil.WriteLines(t, dir, "c.txt"),
	}

	results := loadAll(t, paths, 0)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a1", "a2"}, results[0].Source.Lines)
	assert.Equal(t, []string{"b1"}, results[1].Source.Lines)
	assert.Empty(t, results[2].Source.Lines)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Source.Path)
		assert.NoError(t, r.Err)
	}
}

func TestLoadIsolatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteLines(t, dir, "good.txt", "1")
	missing := filepath.Join(dir, "missing.txt")

	results := loadAll(t, []string{missing, good}, 0)

	require.Error(t, results[0].Err)
	assert.True(t, errors.IsType(results[0].Err, errors.ErrorTypeFile))
	assert.Equal(t, missing, results[0].Source.Path)
	assert.Empty(t, results[0].Source.Lines)

	assert.NoError(t, results[1].Err)
	assert.Equal(t, []string{"1"}, results[1].Source.Lines)
}

func TestLoadLineSplitting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\n\nthree"), 0o644))

	results := loadAll(t, []string{path}, 0)

	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"one", "two", "", "three"}, results[0].Source.Lines)
	assert.Equal(t, int64(len("one\r\ntwo\n\nthree")), results[0].Bytes)
}

func TestLoadRejectsOverlongLines(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLines(t, dir, "long.txt", "short", strings.Repeat("x", 64))

	results := loadAll(t, []string{path}, 16)

	require.Error(t, results[0].Err)
	assert.Empty(t, results[0].Source.Lines)
}

func TestLoadDirectoryFailsOnRead(t *testing.T) {
	dir := t.TempDir()

	results := loadAll(t, []string{dir}, 0)

	require.Error(t, results[0].Err)
	assert.True(t, errors.IsType(results[0].Err, errors.ErrorTypeFile))
}

func TestLoadDecompressesByExtension(t *testing.T) {
	dir := t.TempDir()

	for _, alg := range []compression.Algorithm{compression.Gzip, compression.Zstd, compression.LZ4, compression.Snappy, compression.S2} {
		t.Run(string(alg), func(t *testing.T) {
			var buf bytes.Buffer
			cfg := compression.DefaultConfig()
			cfg.Algorithm = alg
			w, err := compression.NewWriter(&buf, cfg)
			require.NoError(t, err)
			_, err = w.Write([]byte("7\n2.5\nword\n"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			path := filepath.Join(dir, "input.txt"+compression.Extension(alg))
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			results := loadAll(t, []string{path}, 0)
			require.NoError(t, results[0].Err)
			assert.Equal(t, []string{"7", "2.5", "word"}, results[0].Source.Lines)
		})
	}
}

func TestLoadReadsAppendedLZ4Output(t *testing.T) {
	dir := t.TempDir()
	cfg := compression.DefaultConfig()
	cfg.Algorithm = compression.LZ4
	w := NewWriter(dir, "", true, cfg)

	require.NoError(t, w.Write(context.Background(), models.Integer, []string{"1", "2"}).Err)
	res := w.Write(context.Background(), models.Integer, []string{"3"})
	require.NoError(t, res.Err)

	results := loadAll(t, []string{res.Path}, 0)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"1", "2", "3"}, results[0].Source.Lines)
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLines(t, dir, "a.txt", "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	workers := pool.NewWorkers(context.Background(), 1)
	defer workers.Close()

	results, err := Load(ctx, workers, []string{path}, 0)
	require.NoError(t, err)
	assert.Error(t, results[0].Err)
}

func TestCheckMemoryWarnsWhenInputsExceedAvailable(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLines(t, dir, "a.txt", strings.Repeat("x", 100))

	original := virtualMemory
	defer func() { virtualMemory = original }()
	virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Available: 10}, nil
	}

	core, logs := observer.New(zapcore.WarnLevel)
	est := checkMemory([]string{path, filepath.Join(dir, "missing")}, zap.New(core))

	assert.True(t, est.Exceeds())
	assert.Equal(t, uint64(101), est.InputBytes)
	assert.Equal(t, 1, logs.FilterMessage("inputs exceed available memory").Len())
}

func TestCheckMemoryUnknownHost(t *testing.T) {
	original := virtualMemory
	defer func() { virtualMemory = original }()
	virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		return nil, assert.AnError
	}

	est := checkMemory(nil, zap.NewNop())
	assert.False(t, est.Known)
	assert.False(t, est.Exceeds())
}

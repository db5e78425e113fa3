package pipeline

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/testutil"
)

func readCompressed(t *testing.T, path string, alg compression.Algorithm) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := compression.NewReader(f, alg)
	require.NoError(t, err)
	defer r.Close()

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestWriterPath(t *testing.T) {
	w := NewWriter("out", "run1_", false, nil)
	assert.Equal(t, filepath.Join("out", "run1_integers.txt"), w.Path(models.Integer))

	cfg := compression.DefaultConfig()
	cfg.Algorithm = compression.Zstd
	w = NewWriter("out", "", false, cfg)
	assert.Equal(t, filepath.Join("out", "floats.txt.zst"), w.Path(models.Float))
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "", false, nil)
	values := []string{"hello", "", "with spaces ", "ünïcode"}

	res := w.Write(context.Background(), models.String, values)

	require.NoError(t, res.Err)
	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, int64(len("hello\n\nwith spaces \nünïcode\n")), res.Bytes)
	assert.Equal(t, values, testutil.ReadLines(t, res.Path))
}

func TestWriterTruncatesByDefault(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "", false, nil)

	require.NoError(t, w.Write(context.Background(), models.Integer, []string{"1", "2", "3"}).Err)
	res := w.Write(context.Background(), models.Integer, []string{"1", "2", "3"})

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"1", "2", "3"}, testutil.ReadLines(t, res.Path))
}

func TestWriterAppends(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "p_", true, nil)

	require.NoError(t, w.Write(context.Background(), models.Float, []string{"1.5"}).Err)
	res := w.Write(context.Background(), models.Float, []string{"2.5"})

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"1.5", "2.5"}, testutil.ReadLines(t, res.Path))
}

func TestWriterSkipsEmptyPartition(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "", false, nil)
	existing := testutil.WriteLines(t, dir, "strings.txt", "keep me")

	res := w.Write(context.Background(), models.String, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"keep me"}, testutil.ReadLines(t, existing))

	res = w.Write(context.Background(), models.Integer, nil)
	require.NoError(t, res.Err)
	testutil.RequireNoFile(t, res.Path)
}

func TestWriterReportsUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "missing", "dir"), "", false, nil)

	res := w.Write(context.Background(), models.Integer, []string{"1"})

	require.Error(t, res.Err)
	assert.True(t, errors.IsType(res.Err, errors.ErrorTypeFile))
	assert.Zero(t, res.Lines)
}

func TestWriterPrepareCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	w := NewWriter(dir, "", false, nil)

	require.NoError(t, w.Prepare())
	require.NoError(t, w.Write(context.Background(), models.Integer, []string{"1"}).Err)
}

func TestWriterCompressedAppend(t *testing.T) {
	for _, alg := range []compression.Algorithm{compression.Gzip, compression.Zstd, compression.Snappy, compression.S2, compression.LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			dir := t.TempDir()
			cfg := compression.DefaultConfig()
			cfg.Algorithm = alg
			w := NewWriter(dir, "", true, cfg)

			require.NoError(t, w.Write(context.Background(), models.Integer, []string{"1", "2"}).Err)
			res := w.Write(context.Background(), models.Integer, []string{"3"})
			require.NoError(t, res.Err)

			assert.Equal(t, []string{"1", "2", "3"}, readCompressed(t, res.Path, alg))
		})
	}
}

func TestWriterCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := compression.DefaultConfig()
	cfg.Algorithm = compression.LZ4
	w := NewWriter(dir, "", false, cfg)

	res := w.Write(context.Background(), models.String, []string{"a", "b"})
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"a", "b"}, readCompressed(t, res.Path, compression.LZ4))
}

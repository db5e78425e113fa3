package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/typesplit/pkg/testutil"
)

func TestParseType(t *testing.T) {
	got, err := ParseType("cpu")
	require.NoError(t, err)
	assert.Equal(t, CPUProfile, got)

	_, err = ParseType("disk")
	assert.Error(t, err)
}

func TestProfilerWritesRequestedProfiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	p := NewProfiler(Config{
		Types:     []ProfileType{CPUProfile, MemoryProfile, GoroutineProfile},
		OutputDir: dir,
	}, testutil.TestLogger(t))

	require.NoError(t, p.Start())
	sum := 0
	for i := 0; i < 100000; i++ {
		sum += i
	}
	require.NoError(t, p.Stop())
	assert.Greater(t, sum, 0)

	files := p.Files()
	assert.Len(t, files, 3)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), f)
	}
}

func TestProfilerWithoutTypesIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	p := NewProfiler(Config{OutputDir: dir}, nil)

	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())
	testutil.RequireNoFile(t, dir)
}

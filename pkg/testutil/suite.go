package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// FileSuite provides a scratch directory and a deadline for tests that read
// and write real files. Every test gets a fresh directory.
type FileSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	tempDir string
}

// SetupTest runs before each test in the suite
func (s *FileSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)

	tempDir, err := os.MkdirTemp("", "typesplit-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownTest runs after each test in the suite
func (s *FileSuite) TearDownTest() {
	s.cancel()
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
}

// Context returns the test context
func (s *FileSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the temporary directory path
func (s *FileSuite) TempDir() string {
	return s.tempDir
}

// Path joins elem onto the temporary directory.
func (s *FileSuite) Path(elem ...string) string {
	return filepath.Join(append([]string{s.tempDir}, elem...)...)
}

// CreateTempFile creates a temporary file with content
func (s *FileSuite) CreateTempFile(name string, content []byte) string {
	path := s.Path(name)
	require.NoError(s.T(), os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(s.T(), os.WriteFile(path, content, 0o644))
	return path
}

// CreateLinesFile creates a temporary file holding lines, one per line.
func (s *FileSuite) CreateLinesFile(name string, lines ...string) string {
	return WriteLines(s.T(), s.tempDir, name, lines...)
}

// ReadLines reads a file produced during the test.
func (s *FileSuite) ReadLines(path string) []string {
	return ReadLines(s.T(), path)
}

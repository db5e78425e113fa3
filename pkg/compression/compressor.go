// Package compression provides streaming compression for typesplit's input
// and output files.
//
// # Overview
//
// The package provides:
//   - Multiple compression algorithms (Gzip, Snappy, LZ4, Zstd, S2)
//   - Configurable compression levels (Fastest, Default, Better, Best)
//   - Streaming writers and readers for files of any size
//   - File extension mapping in both directions
//
// Append mode writes a fresh stream after the existing one. Every reader
// decodes such a concatenation as a single stream.
//
// # Basic Usage
//
//	w, err := compression.NewWriter(file, &compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Better,
//	})
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
// # Algorithm Selection
//
//   - Snappy/S2: Best for speed, moderate compression
//   - LZ4: Extremely fast, decent compression
//   - Zstd: Best compression ratio, good speed
//   - Gzip: Wide compatibility, good compression
package compression

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
// Each algorithm has different trade-offs between speed and compression ratio.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Algorithms lists every supported algorithm, None first.
var Algorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2}

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// String implements fmt.Stringer
func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a level name to a Level. The empty string is Default.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return Default, nil
	case "fastest":
		return Fastest, nil
	case "better":
		return Better, nil
	case "best":
		return Best, nil
	default:
		return 0, fmt.Errorf("unknown compression level %q", s)
	}
}

// Config represents compressor configuration.
type Config struct {
	Algorithm  Algorithm // Compression algorithm to use
	Level      Level     // Compression level
	BufferSize int       // Buffer size for streaming operations
}

// DefaultConfig returns an uncompressed configuration with 64KB buffers.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:  None,
		Level:      Default,
		BufferSize: 64 * 1024,
	}
}

// Supported reports whether alg is a known algorithm.
func Supported(alg Algorithm) bool {
	for _, a := range Algorithms {
		if a == alg {
			return true
		}
	}
	return false
}

var extensions = map[Algorithm]string{
	None:   "",
	Gzip:   ".gz",
	Snappy: ".sz",
	LZ4:    ".lz4",
	Zstd:   ".zst",
	S2:     ".s2",
}

// Extension returns the file suffix conventionally used for alg.
func Extension(alg Algorithm) string {
	return extensions[alg]
}

// FromExtension detects the algorithm from a file name. Unknown or missing
// extensions map to None.
func FromExtension(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return None
	}
	for alg, e := range extensions {
		if e == ext {
			return alg
		}
	}
	return None
}

// NewWriter wraps w so that everything written to the result is compressed.
// Closing the returned writer flushes and terminates the stream but does not
// close w. If config is nil, DefaultConfig is used.
func NewWriter(w io.Writer, config *Config) (io.WriteCloser, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Algorithm {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriterLevel(w, mapGzipLevel(config.Level))
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(config.Level))); err != nil {
			return nil, fmt.Errorf("configure lz4 writer: %w", err)
		}
		return zw, nil
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(config.Level)))
	case S2:
		opts := []s2.WriterOption{}
		switch config.Level {
		case Better:
			opts = append(opts, s2.WriterBetterCompression())
		case Best:
			opts = append(opts, s2.WriterBestCompression())
		}
		return s2.NewWriter(w, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
}

// NewReader wraps r so that reads return decompressed data. Closing the
// returned reader releases decoder resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return newLZ4Reader(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{dec}, nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// lz4Reader continues into the next frame when one ends and input remains.
type lz4Reader struct {
	src  *bufio.Reader
	zr   *lz4.Reader
	done bool
}

func newLZ4Reader(r io.Reader) *lz4Reader {
	src := bufio.NewReader(r)
	// done starts true so empty input ends before any frame header is read
	return &lz4Reader{src: src, zr: lz4.NewReader(src), done: true}
}

func (l *lz4Reader) Read(p []byte) (int, error) {
	for {
		if !l.done {
			n, err := l.zr.Read(p)
			if err != io.EOF {
				return n, err
			}
			l.done = true
			if n > 0 {
				return n, nil
			}
		}
		if _, err := l.src.Peek(1); err != nil {
			return 0, err
		}
		l.zr.Reset(l.src)
		l.done = false
	}
}

func (l *lz4Reader) Close() error { return nil }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

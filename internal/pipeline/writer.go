package pipeline

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/pool"
)

const writeBufferSize = 64 * 1024

var writeBuffers = pool.New(
	func() *bufio.Writer { return bufio.NewWriterSize(nil, writeBufferSize) },
	func(w *bufio.Writer) { w.Reset(nil) },
)

// WriteResult is the outcome of writing one partition.
type WriteResult struct {
	Kind  models.Kind
	Path  string
	Lines int
	// Bytes counts uncompressed bytes, newlines included.
	Bytes int64
	Err   error
}

// Writer serializes partitions to outputDir/prefix+<name>.txt[.ext].
type Writer struct {
	outputDir   string
	prefix      string
	append      bool
	compression *compression.Config
}

// NewWriter creates a writer. A nil compression config writes plain text.
func NewWriter(outputDir, prefix string, appendMode bool, comp *compression.Config) *Writer {
	if comp == nil {
		comp = compression.DefaultConfig()
	}
	return &Writer{
		outputDir:   outputDir,
		prefix:      prefix,
		append:      appendMode,
		compression: comp,
	}
}

// Path returns the destination for kind.
func (w *Writer) Path(kind models.Kind) string {
	name := w.prefix + kind.Name() + ".txt" + compression.Extension(w.compression.Algorithm)
	return filepath.Join(w.outputDir, name)
}

// Prepare creates the output directory.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output directory").
			WithDetail("path", w.outputDir)
	}
	return nil
}

// Write writes values, one per line, to the destination for kind. Nothing
// is opened when values is empty, so an existing file is left untouched.
func (w *Writer) Write(ctx context.Context, kind models.Kind, values []string) WriteResult {
	res := WriteResult{Kind: kind, Path: w.Path(kind)}
	if len(values) == 0 {
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "write cancelled").WithDetail("path", res.Path)
		return res
	}

	flags := os.O_CREATE | os.O_WRONLY
	if w.append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(res.Path, flags, 0o644)
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "failed to open output").WithDetail("path", res.Path)
		return res
	}

	n, err := w.encode(f, values)
	res.Bytes = n
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "failed to write output").WithDetail("path", res.Path)
		return res
	}

	res.Lines = len(values)
	return res
}

// encode streams values through the buffer and compressor into f.
func (w *Writer) encode(f io.Writer, values []string) (int64, error) {
	cw, err := compression.NewWriter(f, w.compression)
	if err != nil {
		return 0, err
	}

	bw := writeBuffers.Get()
	defer writeBuffers.Put(bw)
	bw.Reset(cw)

	var n int64
	for _, v := range values {
		written, err := bw.WriteString(v)
		n += int64(written)
		if err != nil {
			_ = cw.Close()
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = cw.Close()
			return n, err
		}
		n++
	}

	if err := bw.Flush(); err != nil {
		_ = cw.Close()
		return n, err
	}
	return n, cw.Close()
}

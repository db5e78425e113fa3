package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/mmap"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/pool"
)

const scanBufferSize = 64 * 1024

var scanBuffers = pool.New(
	func() *[]byte {
		b := make([]byte, scanBufferSize)
		return &b
	},
	nil,
)

// LoadResult is the outcome of reading one input file. On failure Source
// carries the path and no lines.
type LoadResult struct {
	Source models.Source
	// Bytes is the on-disk size that was read.
	Bytes int64
	Err   error
}

type indexedLoad struct {
	index  int
	result LoadResult
}

// Load reads every path in parallel on workers, one task per file, and
// returns the results in argument order. A failed file never affects its
// siblings. Files whose extension names a compression format are decoded
// transparently; plain files are memory-mapped. Lines longer than maxLineBytes fail the file.
func Load(ctx context.Context, workers *pool.Workers, paths []string, maxLineBytes int) ([]LoadResult, error) {
	out := make(chan indexedLoad, len(paths))

	for i, path := range paths {
		i, path := i, path
		if err := workers.Go(func(context.Context) {
			out <- indexedLoad{index: i, result: loadFile(ctx, path, maxLineBytes)}
		}); err != nil {
			return nil, err
		}
	}

	panicErr := workers.Wait()
	close(out)

	results := make([]LoadResult, len(paths))
	filled := make([]bool, len(paths))
	for r := range out {
		results[r.index] = r.result
		filled[r.index] = true
	}
	// a task that panicked never reported; its slot still needs a result
	for i, ok := range filled {
		if ok {
			continue
		}
		err := errors.New(errors.ErrorTypeInternal, "load task did not complete")
		if panicErr != nil {
			err = errors.Wrap(panicErr, errors.ErrorTypeInternal, "load task did not complete")
		}
		results[i] = LoadResult{
			Source: models.Source{Path: paths[i]},
			Err:    err.WithDetail("path", paths[i]),
		}
	}
	return results, nil
}

func loadFile(ctx context.Context, path string, maxLineBytes int) LoadResult {
	res := LoadResult{Source: models.Source{Path: path}}

	if err := ctx.Err(); err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "load cancelled").WithDetail("path", path)
		return res
	}

	algo := compression.FromExtension(path)
	if algo == compression.None {
		// plain inputs are mapped; anything unmappable takes the streaming path
		if m, err := mmap.Open(path); err == nil {
			defer m.Close()
			res.Bytes = int64(m.Len())
			return scanLines(res, bytes.NewReader(m.Bytes()), maxLineBytes)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").WithDetail("path", path)
		return res
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		res.Bytes = info.Size()
	}

	r, err := compression.NewReader(f, algo)
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "failed to open compressed input").WithDetail("path", path)
		return res
	}
	defer r.Close()

	return scanLines(res, r, maxLineBytes)
}

// scanLines splits r into lines with a pooled buffer capped at maxLineBytes.
func scanLines(res LoadResult, r io.Reader, maxLineBytes int) LoadResult {
	buf := scanBuffers.Get()
	defer scanBuffers.Put(buf)

	if maxLineBytes <= 0 {
		maxLineBytes = scanBufferSize
	}
	b := *buf
	if maxLineBytes < len(b) {
		b = b[:maxLineBytes:maxLineBytes]
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(b, maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		res.Err = errors.Wrap(err, errors.ErrorTypeFile, "failed to read input").
			WithDetail("path", res.Source.Path).
			WithDetail("line", len(lines)+1)
		return res
	}

	res.Source.Lines = lines
	return res
}

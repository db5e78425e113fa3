// Package mmap maps regular files read-only into memory.
package mmap

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupported is returned for files that cannot be mapped, such as pipes
// and devices, and on platforms without mmap.
var ErrUnsupported = errors.New("mmap: unsupported")

// File is a read-only memory mapping of a whole file.
type File struct {
	file *os.File
	data []byte
}

// Open maps path. An empty file yields a File with no data.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !stat.Mode().IsRegular() {
		file.Close()
		return nil, ErrUnsupported
	}

	size := stat.Size()
	if size == 0 {
		return &File{file: file}, nil
	}
	if int64(int(size)) != size {
		file.Close()
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := mmap(int(file.Fd()), 0, int(size), ProtRead, MapShared)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	// advice is a hint only
	_ = madvise(data, MadvSequential)

	return &File{file: file, data: data}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *File) Bytes() []byte {
	return m.data
}

// Len returns the mapped length.
func (m *File) Len() int {
	return len(m.data)
}

// Close unmaps and closes the file. It is safe to call more than once.
func (m *File) Close() error {
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if m.file != nil {
		if closeErr := m.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.file = nil
	}
	return err
}

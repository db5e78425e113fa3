package models

import (
	"io"
	"sync"
)

// Sink receives lines of human-readable text such as statistics and drop
// notices. Implementations must be safe for concurrent use.
type Sink interface {
	Line(text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

// Line implements Sink
func (f SinkFunc) Line(text string) { f(text) }

// WriterSink writes each line followed by '\n' to w.
func WriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

type writerSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *writerSink) Line(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, text+"\n")
}

// Discard drops every line.
var Discard Sink = SinkFunc(func(string) {})

// Collector records lines in memory, mostly for tests.
type Collector struct {
	mu    sync.Mutex
	lines []string
}

// Line implements Sink
func (c *Collector) Line(text string) {
	c.mu.Lock()
	c.lines = append(c.lines, text)
	c.mu.Unlock()
}

// Lines returns a copy of everything recorded so far.
func (c *Collector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

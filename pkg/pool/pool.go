package pool

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with additional features like statistics tracking
// and automatic reset functionality. The pool is safe for concurrent use.
//
// Type parameter T can be any type, but pointer types are recommended
// for efficiency.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function, if any, runs before an object goes back to the pool.
//
// Example:
//
//	pool := New(
//	    func() *bufio.Writer { return bufio.NewWriterSize(nil, 64<<10) },
//	    func(w *bufio.Writer) { w.Reset(nil) },
//	)
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   new,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return new()
	}
	return p
}

// Get retrieves an object from the pool, allocating one if it is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns current pool statistics.
//
// Returns:
//   - allocated: Total number of objects created by the pool
//   - inUse: Number of objects currently checked out from the pool
//   - gets: Number of Get calls
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

var idCounter uint64

// GenerateID generates a process-unique ID with the specified prefix.
// The ID format is "prefix-number" where number is an atomic counter.
//
// Example:
//
//	id := pool.GenerateID("run")  // Returns "run-1", "run-2", etc.
func GenerateID(prefix string) string {
	id := atomic.AddUint64(&idCounter, 1)
	buf := make([]byte, 0, len(prefix)+21)
	buf = append(buf, prefix...)
	buf = append(buf, '-')
	buf = strconv.AppendUint(buf, id, 10)
	return string(buf)
}

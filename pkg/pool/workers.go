package pool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/typesplit/pkg/errors"
)

// Workers is a bounded pool of goroutines scoped to one run. At most Size
// tasks execute at once; Go blocks while the pool is saturated.
//
// A Workers must be closed. Close waits for every submitted task, so a
// deferred Close releases the pool on every exit path:
//
//	w := pool.NewWorkers(ctx, runtime.NumCPU())
//	defer w.Close()
//
// Tasks report their own outcome; the pool never cancels siblings when one
// task fails. A panicking task is recovered and counted as an internal error.
type Workers struct {
	ctx  context.Context
	size int

	mu     sync.Mutex
	group  *errgroup.Group
	closed bool
	panics []error
}

// NewWorkers creates a pool of the given size. A size <= 0 means NumCPU.
func NewWorkers(ctx context.Context, size int) *Workers {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	g := new(errgroup.Group)
	g.SetLimit(size)
	return &Workers{ctx: ctx, size: size, group: g}
}

// Size returns the concurrency limit.
func (w *Workers) Size() int { return w.size }

// Context returns the context tasks should observe.
func (w *Workers) Context() context.Context { return w.ctx }

// Go schedules fn. It returns an error without running fn if the pool has
// been closed.
func (w *Workers) Go(fn func(ctx context.Context)) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.New(errors.ErrorTypeInternal, "worker pool is closed")
	}
	g := w.group
	w.mu.Unlock()

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				err := errors.New(errors.ErrorTypeInternal, fmt.Sprintf("task panicked: %v", r)).
					WithDetail("stack", string(debug.Stack()))
				w.mu.Lock()
				w.panics = append(w.panics, err)
				w.mu.Unlock()
			}
		}()
		fn(w.ctx)
		return nil
	})
	return nil
}

// Wait blocks until every task scheduled so far has returned. The pool stays
// usable; Wait is the barrier between stages.
func (w *Workers) Wait() error {
	w.mu.Lock()
	g := w.group
	w.mu.Unlock()

	_ = g.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := errors.Join(w.panics...)
	w.panics = nil
	return err
}

// Close waits for outstanding tasks and rejects further submissions.
// It is safe to call more than once.
func (w *Workers) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.Wait()
}

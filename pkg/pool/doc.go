// Package pool provides typed object pooling and the bounded worker pool
// used by typesplit's load and write stages.
//
// Object pooling:
//
//	buffers := pool.New(
//	    func() *bufio.Writer { return bufio.NewWriterSize(nil, 64<<10) },
//	    func(w *bufio.Writer) { w.Reset(nil) },
//	)
//	bw := buffers.Get()
//	defer buffers.Put(bw)
//
// Worker pool:
//
//	workers := pool.NewWorkers(ctx, runtime.NumCPU())
//	defer workers.Close()
//
//	for _, path := range paths {
//	    path := path
//	    _ = workers.Go(func(ctx context.Context) { load(ctx, path) })
//	}
//	_ = workers.Wait() // barrier
package pool

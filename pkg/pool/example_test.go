package pool_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ajitpratap0/typesplit/pkg/pool"
)

// ExampleNew shows a typed pool of buffers that are reset on return.
func ExampleNew() {
	buffers := pool.New(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() },
	)

	buf := buffers.Get()
	buf.WriteString("hello")
	fmt.Println(buf.String())
	buffers.Put(buf)

	buf = buffers.Get()
	fmt.Println(buf.Len())
	buffers.Put(buf)

	// Output:
	// hello
	// 0
}

// ExampleGenerateID shows the shape of generated identifiers.
func ExampleGenerateID() {
	id := pool.GenerateID("run")
	fmt.Println(strings.HasPrefix(id, "run-"))

	// Output:
	// true
}

// ExampleWorkers runs a bounded set of tasks and waits for all of them.
func ExampleWorkers() {
	workers := pool.NewWorkers(context.Background(), 2)
	defer workers.Close()

	var total atomic.Int64
	for i := 1; i <= 4; i++ {
		n := int64(i)
		if err := workers.Go(func(context.Context) { total.Add(n) }); err != nil {
			fmt.Println(err)
			return
		}
	}
	if err := workers.Wait(); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(total.Load())

	// Output:
	// 10
}

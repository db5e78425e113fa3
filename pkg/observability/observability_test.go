package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisabledTracingIsNoop(t *testing.T) {
	shutdown, err := InitTracing(DefaultTracingConfig())
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), nil, "typesplit.run")
	span.SetAttribute("files", 2)
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestTracingExportsSpans(t *testing.T) {
	out := &syncBuffer{}
	config := DefaultTracingConfig()
	config.Enabled = true
	config.ServiceVersion = "test"
	config.Writer = out

	shutdown, err := InitTracing(config)
	require.NoError(t, err)

	ctx, parent := StartSpan(context.Background(), nil, "typesplit.run")
	_, child := StartSpan(ctx, Tracer(), "typesplit.merge")
	child.SetAttribute("policy", "drain")
	child.SetAttribute("lines", int64(3))
	child.SetAttribute("ratio", 0.5)
	child.SetAttribute("ok", true)
	child.SetAttribute("other", []int{1})
	child.RecordError(nil)
	child.End()
	parent.RecordError(errors.New("write failed"))
	parent.End()

	require.NoError(t, shutdown(context.Background()))

	exported := out.String()
	assert.True(t, strings.Contains(exported, "typesplit.run"))
	assert.True(t, strings.Contains(exported, "typesplit.merge"))
	assert.True(t, strings.Contains(exported, "write failed"))
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreIsolated(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.LinesClassified.WithLabelValues("integers").Add(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.LinesClassified.WithLabelValues("integers")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LinesClassified.WithLabelValues("integers")))
}

func TestObserveStage(t *testing.T) {
	c := NewCollector()
	c.ObserveStage("merge", 2*time.Millisecond)
	c.ObserveStage("merge", 3*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(c.StageDuration, "typesplit_stage_duration_seconds"))
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.LinesDropped.WithLabelValues("integer_range").Inc()
	c.PartitionWrites.WithLabelValues("integers", StatusSuccess).Inc()

	path := filepath.Join(t.TempDir(), "typesplit.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `typesplit_lines_dropped_total{reason="integer_range"} 1`))
	assert.True(t, strings.Contains(text, `typesplit_partition_writes_total{partition="integers",status="success"} 1`))
}

func TestWriteTextfileRejectsEmptyPath(t *testing.T) {
	assert.Error(t, NewCollector().WriteTextfile(""))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("load")
	time.Sleep(time.Millisecond)
	assert.Equal(t, "load", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}

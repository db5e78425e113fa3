// Package metrics provides Prometheus instrumentation for typesplit runs.
//
// # Overview
//
// Each run owns a Collector backed by a private prometheus.Registry, so
// concurrent runs (and tests) never share counters. A one-shot CLI has no
// scrape endpoint; the registry is flushed to a node_exporter textfile
// instead.
//
// # Basic Usage
//
//	m := metrics.NewCollector()
//	m.LinesClassified.WithLabelValues("integers").Inc()
//
//	timer := metrics.NewTimer("merge")
//	merge(sources)
//	m.ObserveStage(timer.Name(), timer.Stop())
//
//	if err := m.WriteTextfile("/var/lib/node_exporter/typesplit.prom"); err != nil {
//	    log.Warn("metrics not written", zap.Error(err))
//	}
//
// # Metric Types
//
// Counter: lines classified, lines dropped, sources loaded, partition writes, bytes written
// Histogram: wall-clock duration per pipeline stage
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/typesplit/pkg/errors"
)

const namespace = "typesplit"

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Collector holds the metric vectors for one run.
type Collector struct {
	registry *prometheus.Registry

	// LinesClassified counts accepted lines by kind (integers, floats, strings).
	LinesClassified *prometheus.CounterVec
	// LinesDropped counts rejected lines by reason.
	LinesDropped *prometheus.CounterVec
	// SourcesLoaded counts input files by load status.
	SourcesLoaded *prometheus.CounterVec
	// PartitionWrites counts destination writes by partition and status.
	PartitionWrites *prometheus.CounterVec
	// BytesWritten counts bytes handed to each destination, before compression.
	BytesWritten *prometheus.CounterVec
	// StageDuration observes stage wall time in seconds.
	StageDuration *prometheus.HistogramVec
}

// NewCollector creates a collector registered against a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		LinesClassified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_classified_total",
				Help:      "Total number of lines accepted into a partition",
			},
			[]string{"kind"},
		),
		LinesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_dropped_total",
				Help:      "Total number of lines rejected during classification",
			},
			[]string{"reason"},
		),
		SourcesLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sources_loaded_total",
				Help:      "Total number of input files processed",
			},
			[]string{"status"},
		),
		PartitionWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partition_writes_total",
				Help:      "Total number of partition destination writes",
			},
			[]string{"partition", "status"},
		),
		BytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_written_total",
				Help:      "Total uncompressed bytes written per partition",
			},
			[]string{"partition"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall-clock duration of each pipeline stage",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"stage"},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveStage records a stage duration.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes every metric in the registry to path in the Prometheus
// text exposition format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics textfile").
			WithDetail("path", path)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring stage durations.
type Timer struct {
	name  string
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
//
// Example:
//
//	timer := metrics.NewTimer("load")
//	defer func() { m.ObserveStage(timer.Name(), timer.Stop()) }()
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Name returns the stage name the timer was created with.
func (t *Timer) Name() string { return t.name }

// Stop returns the elapsed time since the timer started. It may be called
// more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// Package pipeline runs a typesplit job: it loads input files in parallel,
// merges and classifies their lines, writes each partition to its own file
// and reports statistics.
//
// # Stages
//
//	load   one task per input file, joined in argument order
//	merge  round-robin over the loaded sources (pure, see Merge)
//	write  one task per non-empty partition, joined before Run returns
//	stats  rendered synchronously while writes are in flight
//
// # Basic Usage
//
//	cfg := config.DefaultRunConfig()
//	cfg.OutputDir = "out"
//	cfg.Stats = config.StatsFull
//
//	p := pipeline.New(cfg, pipeline.WithLogger(log))
//	summary, err := p.Run(ctx, []string{"a.txt", "b.txt"})
//
// Read, parse and write failures never abort a run. They are logged and
// collected in the Summary; Run itself only fails on invalid configuration.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/typesplit/internal/classify"
	"github.com/ajitpratap0/typesplit/internal/stats"
	"github.com/ajitpratap0/typesplit/pkg/config"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/logger"
	"github.com/ajitpratap0/typesplit/pkg/metrics"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/observability"
	"github.com/ajitpratap0/typesplit/pkg/pool"
)

// Stage names used for logs, spans and the stage duration histogram.
const (
	StageLoad  = "load"
	StageMerge = "merge"
	StageWrite = "write"
	StageStats = "stats"
)

// Pipeline executes runs against a fixed configuration.
type Pipeline struct {
	config  config.RunConfig
	logger  *zap.Logger
	stats   models.Sink
	notices models.Sink
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithStatsSink sets where statistics are rendered. Defaults to stdout.
func WithStatsSink(s models.Sink) Option {
	return func(p *Pipeline) { p.stats = s }
}

// WithNoticeSink sets where drop notices are reported. Defaults to stdout.
func WithNoticeSink(s models.Sink) Option {
	return func(p *Pipeline) { p.notices = s }
}

// WithMetrics sets the metrics collector. Defaults to a private collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer sets the tracer used for stage spans. Defaults to the global
// provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New creates a pipeline. A nil cfg uses config.DefaultRunConfig. The
// configuration is copied; later changes to cfg do not affect the pipeline.
func New(cfg *config.RunConfig, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultRunConfig()
	}
	p := &Pipeline{config: *cfg}
	p.config.ApplyDefaults()

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get()
	}
	if p.stats == nil || p.notices == nil {
		stdout := models.WriterSink(os.Stdout)
		if p.stats == nil {
			p.stats = stdout
		}
		if p.notices == nil {
			p.notices = stdout
		}
	}
	if p.metrics == nil {
		p.metrics = metrics.NewCollector()
	}
	if p.tracer == nil {
		p.tracer = observability.Tracer()
	}
	return p
}

// Metrics returns the collector the pipeline records into.
func (p *Pipeline) Metrics() *metrics.Collector {
	return p.metrics
}

// SourceError is a failed input file.
type SourceError struct {
	Path string
	Err  error
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Partition  models.Partition
	Report     stats.Report
	Rejections []models.Rejection
	Unconsumed int
	Memory     MemoryEstimate

	LoadErrors []SourceError
	Writes     []WriteResult
	Duration   time.Duration
}

// WriteErrors returns the failed writes.
func (s *Summary) WriteErrors() []WriteResult {
	var failed []WriteResult
	for _, w := range s.Writes {
		if w.Err != nil {
			failed = append(failed, w)
		}
	}
	return failed
}

// Failed reports whether any unit of work failed.
func (s *Summary) Failed() bool {
	return len(s.LoadErrors) > 0 || len(s.Rejections) > 0 || len(s.WriteErrors()) > 0
}

type indexedWrite struct {
	index  int
	result WriteResult
}

// Run executes one job over paths.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Summary, error) {
	cfg := p.config
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid run configuration")
	}
	comp, err := cfg.Compression.Config()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression configuration")
	}

	start := time.Now()
	summary := &Summary{RunID: pool.GenerateID("run")}
	ctx = context.WithValue(ctx, logger.RunIDKey, summary.RunID)
	log := logger.WithContext(ctx, p.logger)

	ctx, span := observability.StartSpan(ctx, p.tracer, "typesplit.run")
	span.SetAttribute("run.id", summary.RunID)
	span.SetAttribute("run.files", len(paths))
	span.SetAttribute("run.merge_policy", string(cfg.MergePolicy))
	defer span.End()

	workers := pool.NewWorkers(ctx, cfg.Workers)
	defer func() {
		if err := workers.Close(); err != nil {
			log.Error("worker pool reported failures", zap.Error(err))
		}
	}()

	log.Info("starting run",
		zap.Int("files", len(paths)),
		zap.Int("workers", workers.Size()),
		zap.String("output_dir", cfg.OutputDir),
		zap.String("merge_policy", string(cfg.MergePolicy)))

	sources, err := p.load(ctx, log, workers, paths, cfg, summary)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := p.merge(ctx, log, sources, cfg.MergePolicy)
	summary.Partition = result.Partition
	summary.Rejections = result.Rejections
	summary.Unconsumed = result.Unconsumed

	writer := NewWriter(cfg.OutputDir, cfg.Prefix, cfg.Append, comp)
	pending, err := p.scheduleWrites(ctx, log, workers, writer, &result.Partition)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	summary.Report = p.report(ctx, log, result.Partition, cfg)

	summary.Writes = p.joinWrites(log, workers, pending)
	summary.Duration = time.Since(start)

	log.Info("run complete",
		zap.Int("lines", result.Partition.Total()),
		zap.Int("rejected", len(summary.Rejections)),
		zap.Int("failed_sources", len(summary.LoadErrors)),
		zap.Int("failed_writes", len(summary.WriteErrors())),
		zap.Duration("duration", summary.Duration))
	span.RecordError(nil)
	return summary, nil
}

func (p *Pipeline) load(ctx context.Context, log *zap.Logger, workers *pool.Workers, paths []string, cfg config.RunConfig, summary *Summary) ([]models.Source, error) {
	log = log.With(zap.String("stage", StageLoad))
	ctx, span := observability.StartSpan(ctx, p.tracer, "typesplit.load")
	defer span.End()
	timer := metrics.NewTimer(StageLoad)

	summary.Memory = checkMemory(paths, log)

	results, err := Load(ctx, workers, paths, cfg.MaxLineBytes)
	if err != nil {
		return nil, err
	}

	sources := make([]models.Source, len(results))
	var bytes int64
	for i, r := range results {
		sources[i] = r.Source
		if r.Err != nil {
			log.Error("failed to read input", zap.String("path", r.Source.Path), zap.Error(r.Err))
			p.metrics.SourcesLoaded.WithLabelValues(metrics.StatusFailure).Inc()
			summary.LoadErrors = append(summary.LoadErrors, SourceError{Path: r.Source.Path, Err: r.Err})
			continue
		}
		bytes += r.Bytes
		p.metrics.SourcesLoaded.WithLabelValues(metrics.StatusSuccess).Inc()
		log.Debug("loaded input", zap.String("path", r.Source.Path), zap.Int("lines", len(r.Source.Lines)))
	}

	span.SetAttribute("load.files", len(paths))
	span.SetAttribute("load.failed", len(summary.LoadErrors))
	span.SetAttribute("load.bytes", bytes)
	p.metrics.ObserveStage(StageLoad, timer.Stop())
	return sources, nil
}

func (p *Pipeline) merge(ctx context.Context, log *zap.Logger, sources []models.Source, policy config.MergePolicy) MergeResult {
	log = log.With(zap.String("stage", StageMerge))
	_, span := observability.StartSpan(ctx, p.tracer, "typesplit.merge")
	defer span.End()
	timer := metrics.NewTimer(StageMerge)

	result := Merge(sources, policy)

	for _, rej := range result.Rejections {
		log.Warn("dropped line",
			zap.String("path", rej.Path),
			zap.Int("line_no", rej.LineNo),
			zap.String("line", rej.Text),
			zap.Error(rej.Err))
		p.notices.Line(fmt.Sprintf("dropped line %q (%s:%d): %s",
			rej.Text, rej.Path, rej.LineNo, classify.Reason(rej.Err)))
		p.metrics.LinesDropped.WithLabelValues(classify.Reason(rej.Err)).Inc()
	}

	for _, kind := range models.Kinds {
		p.metrics.LinesClassified.WithLabelValues(kind.Name()).Add(float64(result.Partition.Len(kind)))
	}

	if result.Unconsumed > 0 {
		log.Warn("merge stopped before all sources were exhausted",
			zap.String("policy", string(policy)),
			zap.Int("unconsumed", result.Unconsumed))
	}

	span.SetAttribute("merge.policy", string(policy))
	span.SetAttribute("merge.lines", result.Partition.Total())
	span.SetAttribute("merge.rejected", len(result.Rejections))
	span.SetAttribute("merge.unconsumed", result.Unconsumed)
	p.metrics.ObserveStage(StageMerge, timer.Stop())
	return result
}

type pendingWrites struct {
	out    chan indexedWrite
	kinds  []models.Kind
	paths  []string
	failed []WriteResult
	start  time.Time
	span   *observability.Span
}

func (p *Pipeline) scheduleWrites(ctx context.Context, log *zap.Logger, workers *pool.Workers, writer *Writer, partition *models.Partition) (*pendingWrites, error) {
	log = log.With(zap.String("stage", StageWrite))
	_, span := observability.StartSpan(ctx, p.tracer, "typesplit.write")

	pw := &pendingWrites{out: make(chan indexedWrite, len(models.Kinds)), start: time.Now(), span: span}

	var kinds []models.Kind
	for _, kind := range models.Kinds {
		if partition.Len(kind) > 0 {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return pw, nil
	}

	if err := writer.Prepare(); err != nil {
		// every destination fails the same way; nothing is scheduled
		for _, kind := range kinds {
			pw.failed = append(pw.failed, WriteResult{Kind: kind, Path: writer.Path(kind), Err: err})
		}
		return pw, nil
	}

	for i, kind := range kinds {
		i, kind := i, kind
		values := partition.Values(kind)
		pw.kinds = append(pw.kinds, kind)
		pw.paths = append(pw.paths, writer.Path(kind))
		if err := workers.Go(func(ctx context.Context) {
			pw.out <- indexedWrite{index: i, result: writer.Write(ctx, kind, values)}
		}); err != nil {
			span.End()
			return nil, err
		}
		log.Debug("scheduled write", zap.String("partition", kind.Name()), zap.Int("lines", len(values)))
	}
	return pw, nil
}

func (p *Pipeline) report(ctx context.Context, log *zap.Logger, partition models.Partition, cfg config.RunConfig) stats.Report {
	log = log.With(zap.String("stage", StageStats))
	_, span := observability.StartSpan(ctx, p.tracer, "typesplit.stats")
	defer span.End()
	timer := metrics.NewTimer(StageStats)

	report := stats.Compute(partition)
	if err := stats.Render(p.stats, report, cfg.Stats, cfg.StatsFormat); err != nil {
		log.Error("failed to render statistics", zap.Error(err))
		span.RecordError(err)
	}

	span.SetAttribute("stats.level", string(cfg.Stats))
	span.SetAttribute("stats.format", string(cfg.StatsFormat))
	p.metrics.ObserveStage(StageStats, timer.Stop())
	return report
}

func (p *Pipeline) joinWrites(log *zap.Logger, workers *pool.Workers, pw *pendingWrites) []WriteResult {
	defer pw.span.End()
	log = log.With(zap.String("stage", StageWrite))

	panicErr := workers.Wait()
	close(pw.out)

	results := make([]WriteResult, len(pw.kinds))
	filled := make([]bool, len(pw.kinds))
	for w := range pw.out {
		results[w.index] = w.result
		filled[w.index] = true
	}
	for i, ok := range filled {
		if ok {
			continue
		}
		err := errors.New(errors.ErrorTypeInternal, "write task did not complete")
		if panicErr != nil {
			err = errors.Wrap(panicErr, errors.ErrorTypeInternal, "write task did not complete")
		}
		results[i] = WriteResult{Kind: pw.kinds[i], Path: pw.paths[i], Err: err.WithDetail("path", pw.paths[i])}
	}
	results = append(pw.failed, results...)

	var failed int
	for _, r := range results {
		partition := r.Kind.Name()
		if r.Err != nil {
			failed++
			log.Error("failed to write output", zap.String("path", r.Path), zap.Error(r.Err))
			p.metrics.PartitionWrites.WithLabelValues(partition, metrics.StatusFailure).Inc()
			continue
		}
		p.metrics.PartitionWrites.WithLabelValues(partition, metrics.StatusSuccess).Inc()
		p.metrics.BytesWritten.WithLabelValues(partition).Add(float64(r.Bytes))
		log.Debug("wrote output", zap.String("path", r.Path), zap.Int("lines", r.Lines), zap.Int64("bytes", r.Bytes))
	}

	pw.span.SetAttribute("write.destinations", len(results))
	pw.span.SetAttribute("write.failed", failed)
	p.metrics.ObserveStage(StageWrite, time.Since(pw.start))
	return results
}

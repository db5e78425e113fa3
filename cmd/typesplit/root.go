package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/typesplit/internal/pipeline"
	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/config"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/logger"
	"github.com/ajitpratap0/typesplit/pkg/models"
	"github.com/ajitpratap0/typesplit/pkg/observability"
	"github.com/ajitpratap0/typesplit/pkg/profiling"
)

var version = "0.1.0"

// runFlags mirrors the command line. Values only override the
// configuration file when the flag was set explicitly.
type runFlags struct {
	configFile  string
	outputDir   string
	prefix      string
	appendMode  bool
	shortStats  bool
	fullStats   bool
	mergePolicy string
	compress    string
	statsFormat string
	workers     int
	logLevel    string
	logFormat   string
	metricsFile string
	trace       bool
	profile     []string
	profileDir  string
}

func newRootCommand() *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:   "typesplit [flags] file...",
		Short: "Split text files into integer, float and string outputs",
		Long: `typesplit reads every line of the given files, classifies it as an integer,
a float or a string, and writes each class to its own file
(integers.txt, floats.txt, strings.txt) under the output directory.

Files are interleaved line by line in argument order.

Example:
  typesplit -o out -p run1_ -f in1.txt in2.txt`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return run(cmd, cfg, args)
		},
	}

	f := root.Flags()
	f.StringVarP(&flags.outputDir, "output", "o", ".", "Output directory")
	f.StringVarP(&flags.prefix, "prefix", "p", "", "Prefix for output file names")
	f.BoolVarP(&flags.appendMode, "append", "a", false, "Append to existing output files instead of truncating them")
	f.BoolVarP(&flags.shortStats, "short-stats", "s", false, "Print per-partition counts")
	f.BoolVarP(&flags.fullStats, "full-stats", "f", false, "Print counts and aggregates (wins over -s)")
	f.StringVar(&flags.configFile, "config", "", "YAML run configuration; ${VAR} references are expanded")
	f.StringVar(&flags.mergePolicy, "merge-policy", string(config.MergeDrain), "Merge termination: drain or keyed")
	f.StringVar(&flags.compress, "compress", string(compression.None), "Output compression: none, gzip, zstd, lz4, snappy, s2")
	f.StringVar(&flags.statsFormat, "stats-format", string(config.FormatText), "Statistics format: text, json, yaml")
	f.IntVar(&flags.workers, "workers", runtime.NumCPU(), "Worker pool size for loading and writing")
	f.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	f.StringVar(&flags.logFormat, "log-format", "console", "Log encoding (console, json)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	f.BoolVar(&flags.trace, "trace", false, "Emit OpenTelemetry spans to stderr")
	f.StringSliceVar(&flags.profile, "profile", nil, "Capture pprof profiles: cpu, memory, block, mutex, goroutine, trace")
	f.StringVar(&flags.profileDir, "profile-dir", "profiles", "Directory for profile files")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "typesplit v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	return root
}

// resolveConfig layers explicitly set flags over the configuration file over
// the defaults.
func resolveConfig(cmd *cobra.Command, flags *runFlags) (*config.RunConfig, error) {
	cfg := config.DefaultRunConfig()
	if flags.configFile != "" {
		loaded, err := config.LoadRunConfig(flags.configFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load configuration").
				WithDetail("path", flags.configFile)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.OutputDir = flags.outputDir
	}
	if changed("prefix") {
		cfg.Prefix = flags.prefix
	}
	if changed("append") {
		cfg.Append = flags.appendMode
	}
	switch {
	case changed("full-stats") && flags.fullStats:
		cfg.Stats = config.StatsFull
	case changed("short-stats") && flags.shortStats:
		cfg.Stats = config.StatsShort
	}
	if changed("merge-policy") {
		cfg.MergePolicy = config.MergePolicy(flags.mergePolicy)
	}
	if changed("compress") {
		cfg.Compression.Algorithm = compression.Algorithm(flags.compress)
	}
	if changed("stats-format") {
		cfg.StatsFormat = config.StatsFormat(flags.statsFormat)
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if changed("trace") {
		cfg.Trace = flags.trace
	}
	if changed("profile") {
		cfg.Profile.Types = flags.profile
	}
	if changed("profile-dir") {
		cfg.Profile.Dir = flags.profileDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	return cfg, nil
}

// run executes one job. Only setup failures are returned; per-file and
// per-line failures are logged and the command still succeeds.
func run(cmd *cobra.Command, cfg *config.RunConfig, paths []string) error {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Encoding = cfg.Log.Format
	log, err := logger.New(logCfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
	}
	logger.Set(log)
	defer func() { _ = log.Sync() }()

	tracing := observability.DefaultTracingConfig()
	tracing.Enabled = cfg.Trace
	tracing.ServiceVersion = version
	tracing.Writer = cmd.ErrOrStderr()
	shutdown, err := observability.InitTracing(tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	profCfg, err := cfg.Profile.Config()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid profile configuration")
	}
	profiler := profiling.NewProfiler(profCfg, log)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("failed to write profiles", zap.Error(err))
		}
	}()

	stdout := models.WriterSink(cmd.OutOrStdout())
	p := pipeline.New(cfg,
		pipeline.WithLogger(log),
		pipeline.WithStatsSink(stdout),
		pipeline.WithNoticeSink(stdout),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := p.Run(ctx, paths); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := p.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return nil
}

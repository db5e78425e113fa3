// Package config provides the run configuration for typesplit.
// A single RunConfig describes one invocation: where output goes, how it is
// named, whether it is appended, how much statistics to print, and the
// ambient settings (logging, metrics, tracing, worker count).
//
// Example usage:
//
//	cfg := config.DefaultRunConfig()
//	cfg.OutputDir = "out"
//	cfg.Stats = config.StatsFull
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"

	"github.com/ajitpratap0/typesplit/pkg/compression"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/profiling"
)

// StatsLevel controls how much of the statistics report is printed.
type StatsLevel string

const (
	// StatsNone prints nothing
	StatsNone StatsLevel = "none"
	// StatsShort prints per-partition counts
	StatsShort StatsLevel = "short"
	// StatsFull adds min/max/sum/mean and shortest/longest
	StatsFull StatsLevel = "full"
)

// StatsFormat selects the statistics rendering.
type StatsFormat string

const (
	// FormatText is the human-readable report
	FormatText StatsFormat = "text"
	// FormatJSON renders one JSON document
	FormatJSON StatsFormat = "json"
	// FormatYAML renders one YAML document
	FormatYAML StatsFormat = "yaml"
)

// MergePolicy selects when the round-robin merge stops.
type MergePolicy string

const (
	// MergeDrain keeps running rounds until every source is exhausted
	MergeDrain MergePolicy = "drain"
	// MergeKeyed stops as soon as the second source (index 1) is exhausted
	MergeKeyed MergePolicy = "keyed"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 64 << 20

// RunConfig is immutable for the duration of a run.
type RunConfig struct {
	// OutputDir receives the three output files
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// Prefix is prepended to every output file name
	Prefix string `yaml:"prefix" json:"prefix"`
	// Append opens outputs in append mode instead of truncating them
	Append bool `yaml:"append" json:"append"`

	Stats       StatsLevel  `yaml:"stats" json:"stats"`
	StatsFormat StatsFormat `yaml:"stats_format" json:"stats_format"`
	MergePolicy MergePolicy `yaml:"merge_policy" json:"merge_policy"`

	Compression CompressionConfig `yaml:"compression" json:"compression"`

	// Workers sizes the load/write worker pool
	Workers int `yaml:"workers" json:"workers"`
	// MaxLineBytes is the longest line the loader accepts
	MaxLineBytes int `yaml:"max_line_bytes" json:"max_line_bytes"`

	Log LogConfig `yaml:"log" json:"log"`

	// MetricsFile, when set, receives the Prometheus text exposition after the run
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	// Trace emits OpenTelemetry spans to stderr
	Trace bool `yaml:"trace" json:"trace"`

	Profile ProfileConfig `yaml:"profile" json:"profile"`
}

// ProfileConfig selects pprof profiles captured around the run.
type ProfileConfig struct {
	Types []string `yaml:"types" json:"types"`
	Dir   string   `yaml:"dir" json:"dir"`
}

// Config converts the YAML form into a profiling.Config.
func (c ProfileConfig) Config() (profiling.Config, error) {
	cfg := profiling.Config{OutputDir: c.Dir}
	for _, name := range c.Types {
		t, err := profiling.ParseType(name)
		if err != nil {
			return profiling.Config{}, err
		}
		cfg.Types = append(cfg.Types, t)
	}
	return cfg, nil
}

// CompressionConfig selects optional output compression.
type CompressionConfig struct {
	Algorithm compression.Algorithm `yaml:"algorithm" json:"algorithm"`
	Level     string                `yaml:"level" json:"level"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultRunConfig returns the defaults of a bare invocation.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		OutputDir:   ".",
		Stats:       StatsNone,
		StatsFormat: FormatText,
		MergePolicy: MergeDrain,
		Compression: CompressionConfig{
			Algorithm: compression.None,
			Level:     "default",
		},
		Workers:      runtime.NumCPU(),
		MaxLineBytes: DefaultMaxLineBytes,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Profile: ProfileConfig{
			Dir: "profiles",
		},
	}
}

// ApplyDefaults fills zero values left by a partial YAML document.
func (c *RunConfig) ApplyDefaults() {
	d := DefaultRunConfig()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Stats == "" {
		c.Stats = d.Stats
	}
	if c.StatsFormat == "" {
		c.StatsFormat = d.StatsFormat
	}
	if c.MergePolicy == "" {
		c.MergePolicy = d.MergePolicy
	}
	if c.Compression.Algorithm == "" {
		c.Compression.Algorithm = d.Compression.Algorithm
	}
	if c.Compression.Level == "" {
		c.Compression.Level = d.Compression.Level
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = d.MaxLineBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Profile.Dir == "" {
		c.Profile.Dir = d.Profile.Dir
	}
}

// Validate checks every enumerated field and bound.
func (c *RunConfig) Validate() error {
	if c.OutputDir == "" {
		return errors.New(errors.ErrorTypeValidation, "output directory is empty")
	}

	switch c.Stats {
	case StatsNone, StatsShort, StatsFull:
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown stats level").
			WithDetail("stats", string(c.Stats))
	}

	switch c.StatsFormat {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown stats format").
			WithDetail("stats_format", string(c.StatsFormat))
	}

	switch c.MergePolicy {
	case MergeDrain, MergeKeyed:
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown merge policy").
			WithDetail("merge_policy", string(c.MergePolicy))
	}

	if _, err := c.Compression.Config(); err != nil {
		return err
	}

	if c.Workers <= 0 {
		return errors.New(errors.ErrorTypeValidation, "workers must be positive").
			WithDetail("workers", c.Workers)
	}

	if c.MaxLineBytes <= 0 {
		return errors.New(errors.ErrorTypeValidation, "max_line_bytes must be positive").
			WithDetail("max_line_bytes", c.MaxLineBytes)
	}

	if _, err := c.Profile.Config(); err != nil {
		return err
	}

	return nil
}

// Config converts the YAML form into a compression.Config.
func (c CompressionConfig) Config() (*compression.Config, error) {
	alg := c.Algorithm
	if alg == "" {
		alg = compression.None
	}
	if !compression.Supported(alg) {
		return nil, errors.New(errors.ErrorTypeValidation, "unknown compression algorithm").
			WithDetail("algorithm", string(alg))
	}

	level, err := compression.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid compression level")
	}

	cfg := compression.DefaultConfig()
	cfg.Algorithm = alg
	cfg.Level = level
	return cfg, nil
}

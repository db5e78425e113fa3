// Package profiling captures pprof and execution-trace profiles around a
// typesplit run.
package profiling

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/typesplit/pkg/errors"
)

// ProfileType represents the type of profiling to perform
type ProfileType string

const (
	CPUProfile       ProfileType = "cpu"
	MemoryProfile    ProfileType = "memory"
	BlockProfile     ProfileType = "block"
	MutexProfile     ProfileType = "mutex"
	GoroutineProfile ProfileType = "goroutine"
	TraceProfile     ProfileType = "trace"
)

// ProfileTypes lists every supported type.
var ProfileTypes = []ProfileType{CPUProfile, MemoryProfile, BlockProfile, MutexProfile, GoroutineProfile, TraceProfile}

// ParseType validates a profile type name.
func ParseType(s string) (ProfileType, error) {
	for _, t := range ProfileTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrorTypeValidation, "unknown profile type").WithDetail("type", s)
}

// Config contains configuration for profiling
type Config struct {
	// Profile types to collect
	Types []ProfileType

	// Output directory for profile files
	OutputDir string

	// Block profile rate, used only when block profiling is requested
	BlockProfileRate int

	// Mutex profile fraction, used only when mutex profiling is requested
	MutexProfileFraction int
}

// Profiler starts the requested profiles and writes them out on Stop.
// It is not safe for concurrent use.
type Profiler struct {
	config    Config
	logger    *zap.Logger
	stamp     string
	started   bool
	cpuFile   *os.File
	traceFile *os.File
	files     []string
}

// NewProfiler creates a profiler. A nil logger is replaced by a no-op one.
func NewProfiler(config Config, logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.OutputDir == "" {
		config.OutputDir = "profiles"
	}
	if config.BlockProfileRate <= 0 {
		config.BlockProfileRate = 1
	}
	if config.MutexProfileFraction <= 0 {
		config.MutexProfileFraction = 1
	}
	return &Profiler{
		config: config,
		logger: logger,
		stamp:  time.Now().Format("20060102-150405"),
	}
}

// Start begins profiling. Snapshot profiles (memory, goroutine, block,
// mutex) are only written on Stop.
func (p *Profiler) Start() error {
	if len(p.config.Types) == 0 {
		return nil
	}
	if err := os.MkdirAll(p.config.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile directory").
			WithDetail("path", p.config.OutputDir)
	}

	for _, t := range p.config.Types {
		switch t {
		case CPUProfile:
			f, err := p.create(t, "prof")
			if err != nil {
				return p.abort(err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				_ = f.Close()
				return p.abort(errors.Wrap(err, errors.ErrorTypeInternal, "failed to start CPU profiling"))
			}
			p.cpuFile = f
		case TraceProfile:
			f, err := p.create(t, "out")
			if err != nil {
				return p.abort(err)
			}
			if err := trace.Start(f); err != nil {
				_ = f.Close()
				return p.abort(errors.Wrap(err, errors.ErrorTypeInternal, "failed to start tracing"))
			}
			p.traceFile = f
		case BlockProfile:
			runtime.SetBlockProfileRate(p.config.BlockProfileRate)
		case MutexProfile:
			runtime.SetMutexProfileFraction(p.config.MutexProfileFraction)
		}
	}

	p.started = true
	p.logger.Info("profiling started",
		zap.String("output_dir", p.config.OutputDir),
		zap.Any("types", p.config.Types))
	return nil
}

// Stop ends running profiles and writes the snapshot ones. It returns the
// first error but still attempts every profile.
func (p *Profiler) Stop() error {
	if !p.started {
		return nil
	}
	p.started = false

	var errs []error
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.closeFile(p.cpuFile))
		p.cpuFile = nil
	}
	if p.traceFile != nil {
		trace.Stop()
		errs = append(errs, p.closeFile(p.traceFile))
		p.traceFile = nil
	}

	for _, t := range p.config.Types {
		switch t {
		case MemoryProfile:
			runtime.GC()
			errs = append(errs, p.snapshot(t, "heap", 0))
		case BlockProfile:
			errs = append(errs, p.snapshot(t, "block", 0))
			runtime.SetBlockProfileRate(0)
		case MutexProfile:
			errs = append(errs, p.snapshot(t, "mutex", 0))
			runtime.SetMutexProfileFraction(0)
		case GoroutineProfile:
			errs = append(errs, p.snapshot(t, "goroutine", 2))
		}
	}

	p.logger.Info("profiling completed",
		zap.String("output_dir", p.config.OutputDir),
		zap.Strings("files", p.files))
	return errors.Join(errs...)
}

// Files returns the profile files written so far.
func (p *Profiler) Files() []string {
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

func (p *Profiler) create(t ProfileType, ext string) (*os.File, error) {
	name := filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_%s.%s", t, p.stamp, ext))
	f, err := os.Create(name) //nolint:gosec // G304: directory comes from configuration
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile file").WithDetail("path", name)
	}
	return f, nil
}

func (p *Profiler) closeFile(f *os.File) error {
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close profile file").WithDetail("path", f.Name())
	}
	p.files = append(p.files, f.Name())
	return nil
}

func (p *Profiler) snapshot(t ProfileType, lookup string, debug int) error {
	f, err := p.create(t, "prof")
	if err != nil {
		return err
	}
	if err := pprof.Lookup(lookup).WriteTo(f, debug); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write profile").WithDetail("type", string(t))
	}
	return p.closeFile(f)
}

// abort stops anything Start already began.
func (p *Profiler) abort(err error) error {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = p.cpuFile.Close()
		p.cpuFile = nil
	}
	if p.traceFile != nil {
		trace.Stop()
		_ = p.traceFile.Close()
		p.traceFile = nil
	}
	return err
}

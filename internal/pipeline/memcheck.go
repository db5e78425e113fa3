package pipeline

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// virtualMemory is replaced in tests.
var virtualMemory = mem.VirtualMemory

// MemoryEstimate compares the on-disk size of the inputs with the memory the
// host reports as available.
type MemoryEstimate struct {
	InputBytes     uint64
	AvailableBytes uint64
	// Known is false when the host did not report memory statistics.
	Known bool
}

// Exceeds reports whether the inputs are larger than available memory.
func (m MemoryEstimate) Exceeds() bool {
	return m.Known && m.InputBytes > m.AvailableBytes
}

// estimateMemory sums input sizes. Missing files count as zero; the loader
// reports them.
func estimateMemory(paths []string) MemoryEstimate {
	var est MemoryEstimate
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			est.InputBytes += uint64(info.Size())
		}
	}

	vm, err := virtualMemory()
	if err != nil || vm == nil {
		return est
	}
	est.AvailableBytes = vm.Available
	est.Known = true
	return est
}

// checkMemory logs a warning when every input is buffered in memory and the
// inputs alone are larger than what the host has available. Compressed
// inputs expand on load, so the estimate is a lower bound.
func checkMemory(paths []string, log *zap.Logger) MemoryEstimate {
	est := estimateMemory(paths)
	if !est.Known {
		log.Debug("available memory unknown, skipping preflight check")
		return est
	}
	if est.Exceeds() {
		log.Warn("inputs exceed available memory",
			zap.Uint64("input_bytes", est.InputBytes),
			zap.Uint64("available_bytes", est.AvailableBytes))
	}
	return est
}

// Package hw probes memory, cache and core resources and derives the
// quantizer tuning recommendations (block size, ternary threshold,
// concurrency).
package hw

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/kipepeo-ai/KipepeoAI/internal/chip"
)

// Capabilities is the probed hardware picture plus the derived tuning
// recommendations. Recomputed only on an explicit Probe call.
type Capabilities struct {
	HasNEON bool
	HasFP16 bool

	L1CacheSize int
	L2CacheSize int
	L3CacheSize int

	TotalMemory     uint64
	AvailableMemory uint64

	CPUCores int
	CPUModel string

	OptimalBlockSize        uint32
	OptimalTernaryThreshold float32
	UseMemoryPool           bool
	MaxConcurrentOps        int
}

const (
	gib = uint64(1) << 30
	kib = 1 << 10
)

// Probe reads the current memory state and CPU description and derives
// recommendations. Failures of the memory source degrade to the
// desktop defaults rather than erroring; Probe never fails.
func Probe() Capabilities {
	caps := Capabilities{
		HasNEON: chip.HasNEON(),
		HasFP16: chip.HasFP16(),
		// Low-end mobile defaults: 32KB L1, 256KB L2, no shared L3.
		L1CacheSize: 32 * kib,
		L2CacheSize: 256 * kib,
	}
	if chip.Detect().IsApple() {
		caps.L1CacheSize = 128 * kib
		caps.L2CacheSize = 4096 * kib
	}

	if v, err := mem.VirtualMemory(); err == nil && v.Total > 0 {
		caps.TotalMemory = v.Total
		caps.AvailableMemory = v.Available
	} else {
		caps.TotalMemory = 8 * gib
		caps.AvailableMemory = 4 * gib
	}

	caps.CPUCores = runtime.NumCPU()
	caps.CPUModel = "Unknown"
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if infos[0].ModelName != "" {
			caps.CPUModel = infos[0].ModelName
		} else if infos[0].VendorID != "" {
			caps.CPUModel = infos[0].VendorID
		}
	}

	derive(&caps)
	return caps
}

func derive(caps *Capabilities) {
	switch {
	case caps.AvailableMemory < 1*gib:
		caps.OptimalBlockSize = 64
		caps.UseMemoryPool = true
		caps.MaxConcurrentOps = 1
	case caps.AvailableMemory < 2*gib:
		caps.OptimalBlockSize = 128
		caps.UseMemoryPool = true
		caps.MaxConcurrentOps = 2
	default:
		caps.OptimalBlockSize = 256
		caps.UseMemoryPool = false
		caps.MaxConcurrentOps = 4
	}
	caps.OptimalTernaryThreshold = ClampThreshold(0.33)
}

// ClampThreshold bounds a ternary threshold to the supported range.
func ClampThreshold(t float32) float32 {
	if t < 0.25 {
		return 0.25
	}
	if t > 0.40 {
		return 0.40
	}
	return t
}

// OptimalBlockSizeFor picks a block size from the model footprint and
// the memory headroom.
func OptimalBlockSizeFor(modelBytes, availableBytes uint64) uint32 {
	switch {
	case modelBytes > 10*1000*1000*1000:
		if availableBytes > 4*gib {
			return 256
		}
		return 128
	case modelBytes > 1*1000*1000*1000:
		if availableBytes > 2*gib {
			return 256
		}
		return 128
	case availableBytes < 1*gib:
		return 64
	default:
		return 128
	}
}

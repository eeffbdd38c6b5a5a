// Package quant implements the AfricaQuant sub-2-bit weight codec:
// block-scaled ternary (1.28-bit) and quaternary (1.58-bit) encoders
// and decoders over a two-bit packed stream, plus the quantized
// matrix-vector path into the dispatched kernels.
package quant

import (
	"math"
	"sync"

	"github.com/kipepeo-ai/KipepeoAI/internal/hw"
)

// Quantizer holds the per-instance hardware cache and the lane-path
// toggle. Mutating entry points serialize on the instance mutex; the
// block math itself runs lock-free, so independent instances quantize
// concurrently without contention.
type Quantizer struct {
	mu          sync.Mutex
	laneEnabled bool
	caps        hw.Capabilities
}

// New probes the hardware and returns a quantizer tuned for it.
func New() *Quantizer {
	return NewWithCapabilities(hw.Probe())
}

// NewWithCapabilities builds a quantizer over a fixed capability set
// (tests and callers that already probed).
func NewWithCapabilities(caps hw.Capabilities) *Quantizer {
	return &Quantizer{laneEnabled: caps.HasNEON, caps: caps}
}

// SetLaneEnabled toggles the unrolled lane path. Off forces the scalar
// path; output bits are identical either way.
func (q *Quantizer) SetLaneEnabled(enabled bool) {
	q.mu.Lock()
	q.laneEnabled = enabled
	q.mu.Unlock()
}

// LaneEnabled reports whether the unrolled lane path is active.
func (q *Quantizer) LaneEnabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.laneEnabled
}

// Capabilities returns the cached hardware capability set.
func (q *Quantizer) Capabilities() hw.Capabilities {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.caps
}

// SetCapabilities overrides the cached capability set.
func (q *Quantizer) SetCapabilities(caps hw.Capabilities) {
	q.mu.Lock()
	q.caps = caps
	q.mu.Unlock()
}

// snapshot takes the mutex only around the cache read; the math after
// it runs unlocked.
func (q *Quantizer) snapshot() (bool, hw.Capabilities) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.laneEnabled, q.caps
}

func validScale(s float32) bool {
	return s > 0 && !math.IsInf(float64(s), 0) && !math.IsNaN(float64(s))
}

func validateQuantArgs(weights []float32, out []byte, meta []Meta, block uint32) error {
	if weights == nil || out == nil || meta == nil {
		return ErrNilInput
	}
	if len(weights) == 0 {
		return ErrInvalidCount
	}
	if !isPow2(block) {
		return ErrInvalidBlockSize
	}
	if len(out) < PackedSize(len(weights)) {
		return ErrBufferTooSmall
	}
	if len(meta) < MetaCount(len(weights), block) {
		return ErrBufferTooSmall
	}
	return nil
}

func validateDequantArgs(in []byte, out []float32, meta []Meta, block uint32) error {
	if in == nil || out == nil || meta == nil {
		return ErrNilInput
	}
	if len(out) == 0 {
		return ErrInvalidCount
	}
	if !isPow2(block) {
		return ErrInvalidBlockSize
	}
	if len(in) < PackedRowBytes(len(out)) {
		return ErrBufferTooSmall
	}
	if len(meta) < MetaCount(len(out), block) {
		return ErrBufferTooSmall
	}
	return nil
}

// resolveBlock picks the effective block size: explicit argument, then
// config, then the hardware recommendation.
func resolveBlock(block uint32, cfg *Config, caps hw.Capabilities) uint32 {
	if block != 0 {
		return block
	}
	if cfg != nil && cfg.BlockSize != 0 {
		return cfg.BlockSize
	}
	if caps.OptimalBlockSize != 0 {
		return caps.OptimalBlockSize
	}
	return 128
}

// resolveThreshold picks the ternary decision threshold: explicit
// override, then the adaptive estimate, then the hardware default.
func resolveThreshold(weights []float32, cfg *Config, caps hw.Capabilities) float32 {
	if cfg != nil && cfg.Threshold > 0 {
		return hw.ClampThreshold(cfg.Threshold)
	}
	fallback := caps.OptimalTernaryThreshold
	if fallback <= 0 {
		fallback = 0.33
	}
	if cfg != nil && cfg.AdaptiveThreshold {
		return adaptiveThreshold(weights, fallback)
	}
	return fallback
}

func progressOf(cfg *Config) func(float32) {
	if cfg == nil {
		return nil
	}
	return cfg.Progress
}

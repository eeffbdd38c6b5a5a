package video

// RateControl wraps the kip-mode controller with the encoder-facing
// clamps: min/max bitrate bounds, a variance factor, and a slow
// bitrate-adjustment EMA used when kip-mode analysis is disabled.

// RateControlConfig bounds the controller output.
type RateControlConfig struct {
	TargetBitrateKbps uint32
	MinBitrateKbps    uint32
	MaxBitrateKbps    uint32
	// BitrateVariance scales how hard the accumulated error bends the
	// clamped target.
	BitrateVariance float32
	EnableKipMode   bool
	Kip             Config
}

// RateStats aggregates over the rate-control lifetime.
type RateStats struct {
	TotalFrames       uint64
	TotalBits         uint64
	AverageFrameKbits float32
	Kip               Stats
}

// RateControl is single-threaded by contract, like the controller it
// wraps.
type RateControl struct {
	cfg RateControlConfig
	kip *Controller

	adjustment float32
	err        float32
	stats      RateStats
}

// NewRateControl builds the outer controller.
func NewRateControl(cfg RateControlConfig) *RateControl {
	r := &RateControl{cfg: cfg, adjustment: 1}
	if cfg.EnableKipMode {
		r.kip = NewController(cfg.Kip)
	}
	return r
}

// Kip exposes the inner controller (nil when kip-mode is off).
func (r *RateControl) Kip() *Controller { return r.kip }

// ComputeTargetBitrate analyzes the frame and returns the clamped
// per-frame target along with the analysis.
func (r *RateControl) ComputeTargetBitrate(yuv []byte, width, height int, baseBitrate uint32) (uint32, *FrameAnalysis, error) {
	var (
		analysis *FrameAnalysis
		target   uint32
	)
	if r.kip != nil {
		a, err := r.kip.AnalyzeFrame(yuv, width, height)
		if err != nil {
			return 0, nil, err
		}
		analysis = a
		target = r.kip.FrameBitrate(a, baseBitrate)
	} else {
		target = uint32(float32(baseBitrate) * r.adjustment)
	}

	if r.cfg.MinBitrateKbps > 0 && target < r.cfg.MinBitrateKbps {
		target = r.cfg.MinBitrateKbps
	}
	if r.cfg.MaxBitrateKbps > 0 && target > r.cfg.MaxBitrateKbps {
		target = r.cfg.MaxBitrateKbps
	}

	if r.cfg.BitrateVariance != 0 {
		factor := 1 + r.cfg.BitrateVariance*r.err
		if factor < 0 {
			factor = 0
		}
		target = uint32(float32(target) * factor)
	}

	r.stats.TotalFrames++
	return target, analysis, nil
}

// UpdateAfterFrame folds the realized size into the error EMA and the
// slow adjustment factor (clamped to [0.5, 2]).
func (r *RateControl) UpdateAfterFrame(actualBits, targetBits uint32) {
	r.stats.TotalBits += uint64(actualBits)
	if r.kip != nil {
		r.kip.UpdateAfterFrame(actualBits, targetBits)
	}
	if targetBits == 0 {
		return
	}
	err := (float32(actualBits) - float32(targetBits)) / float32(targetBits)
	r.err = 0.9*r.err + 0.1*err

	ratio := float32(actualBits) / float32(targetBits)
	r.adjustment = 0.95*r.adjustment + 0.05*(1/ratio)
	if r.adjustment < 0.5 {
		r.adjustment = 0.5
	}
	if r.adjustment > 2 {
		r.adjustment = 2
	}
}

// BitrateAdjustment returns the slow adjustment factor.
func (r *RateControl) BitrateAdjustment() float32 { return r.adjustment }

// Stats returns lifetime counters with the derived mean frame size.
func (r *RateControl) Stats() RateStats {
	stats := r.stats
	if stats.TotalFrames > 0 {
		stats.AverageFrameKbits = float32(stats.TotalBits) / 1000 / float32(stats.TotalFrames)
	}
	if r.kip != nil {
		stats.Kip = r.kip.Stats()
	}
	return stats
}

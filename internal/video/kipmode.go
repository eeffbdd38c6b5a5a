package video

import "errors"

// kip-mode-lowband: perceptual rate control for low-bandwidth AV1.
// Frames are scored for skin coverage and talking-head likelihood, and
// the scores modulate per-macroblock QP and the per-frame bit budget.

// Config carries the kip-mode tuning.
type Config struct {
	TargetBitrateKbps uint32
	// SkinToneBoost scales the QP cut inside skin regions (1.0-2.0).
	SkinToneBoost        float32
	EnableSkinProtection bool
	EnableTalkingHead    bool
	// EnableCLIP routes talking-head scoring through the CLIP model
	// when one is attached.
	EnableCLIP      bool
	MinQPSkin       float32
	MaxQPBackground float32
}

// DefaultConfig is the low-band preset.
func DefaultConfig() Config {
	return Config{
		TargetBitrateKbps:    1000,
		SkinToneBoost:        1.5,
		EnableSkinProtection: true,
		EnableTalkingHead:    true,
		MinQPSkin:            20,
		MaxQPBackground:      50,
	}
}

// Stats accumulates over the controller lifetime.
type Stats struct {
	TotalFrames         uint64
	TotalBits           uint64
	AverageSkinCoverage float32
}

var ErrInvalidFrame = errors.New("video: frame buffer nil or too small")

const keyframeInterval = 60

// Controller is the kip-mode-lowband rate controller. Single-threaded
// by contract: one encoder drives one controller.
type Controller struct {
	cfg      Config
	detector *SkinToneDetector
	clip     CLIPScorer

	frameCount uint32
	rateErr    float32
	stats      Stats

	maskBuf []byte
	rgbBuf  []byte
}

// NewController builds a controller; skin protection installs the
// African skin-tone calibration.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg, detector: NewSkinToneDetector()}
	if cfg.EnableSkinProtection {
		c.detector.CalibrateForAfricanSkinTones()
	}
	return c
}

// SetCLIPScorer attaches the talking-head model.
func (c *Controller) SetCLIPScorer(s CLIPScorer) { c.clip = s }

// Detector exposes the skin detector for threshold overrides.
func (c *Controller) Detector() *SkinToneDetector { return c.detector }

// AnalyzeFrame scores one YUV420 frame.
func (c *Controller) AnalyzeFrame(yuv []byte, width, height int) (*FrameAnalysis, error) {
	if yuv == nil || width <= 0 || height <= 0 || len(yuv) < I420Size(width, height) {
		return nil, ErrInvalidFrame
	}

	a := &FrameAnalysis{TemporalStability: 0.7}

	if c.cfg.EnableSkinProtection {
		if len(c.maskBuf) < width*height {
			c.maskBuf = make([]byte, width*height)
		}
		a.SkinToneCoverage = c.detector.DetectSkin(yuv, width, height, c.maskBuf[:width*height])
		a.Regions = skinRegions(c.maskBuf[:width*height], width, height)
	}

	if c.cfg.EnableTalkingHead {
		a.TalkingHeadScore = c.talkingHead(yuv, width, height, a.SkinToneCoverage)
	}

	a.SceneComplexity = sceneComplexity(yuv[:width*height])

	// Keyframe cadence: the first frame and every interval after.
	a.KeyframeNeeded = c.frameCount%keyframeInterval == 0
	c.frameCount++

	c.stats.TotalFrames++
	n := float32(c.stats.TotalFrames)
	c.stats.AverageSkinCoverage = (c.stats.AverageSkinCoverage*(n-1) + a.SkinToneCoverage) / n

	return a, nil
}

func (c *Controller) talkingHead(yuv []byte, width, height int, skinCoverage float32) float32 {
	if c.cfg.EnableCLIP && c.clip != nil {
		if len(c.rgbBuf) < width*height*3 {
			c.rgbBuf = make([]byte, width*height*3)
		}
		I420ToRGB(yuv, width, height, c.rgbBuf[:width*height*3])
		if score, err := c.clip.TalkingHeadScore(c.rgbBuf[:width*height*3], width, height); err == nil {
			return score
		}
		// Model failure falls through to the coarse predicate.
	}
	if skinCoverage > 0.15 {
		return 0.8
	}
	return 0.2
}

// sceneComplexity is the sampled Y-plane variance at stride 64,
// normalized and clipped to [0, 1].
func sceneComplexity(yPlane []byte) float32 {
	n := 0
	var sum float32
	for i := 0; i < len(yPlane); i += 64 {
		sum += float32(yPlane[i])
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float32(n)
	var variance float32
	for i := 0; i < len(yPlane); i += 64 {
		d := float32(yPlane[i]) - mean
		variance += d * d
	}
	variance /= float32(n)

	complexity := variance / 1000
	if complexity > 1 {
		complexity = 1
	}
	return complexity
}

// MacroblockQP modulates the frame base QP for one macroblock. Skin
// ROIs get a cut scaled by boost and importance; outside skin, a
// confident talking head still pulls QP down. The result is clamped to
// [MinQPSkin, MaxQPBackground].
func (c *Controller) MacroblockQP(mbX, mbY uint32, baseQP float32, a *FrameAnalysis) float32 {
	if a == nil {
		return baseQP
	}
	qp := baseQP

	inSkin := false
	for _, roi := range a.Regions {
		if mbX >= uint32(roi.X) && mbX < uint32(roi.X)+uint32(roi.W) &&
			mbY >= uint32(roi.Y) && mbY < uint32(roi.Y)+uint32(roi.H) {
			inSkin = true
			qp -= c.cfg.SkinToneBoost * 5 * roi.Importance
			break
		}
	}
	if !inSkin && a.TalkingHeadScore > 0.5 {
		qp -= 2 * a.TalkingHeadScore
	}

	if qp < c.cfg.MinQPSkin {
		qp = c.cfg.MinQPSkin
	}
	if qp > c.cfg.MaxQPBackground {
		qp = c.cfg.MaxQPBackground
	}
	return qp
}

// FrameBitrate turns the analysis into a per-frame bitrate target.
func (c *Controller) FrameBitrate(a *FrameAnalysis, baseBitrate uint32) uint32 {
	if a == nil {
		return baseBitrate
	}
	mult := float32(1.0)

	if a.SkinToneCoverage > 0.1 {
		mult += 0.3 * a.SkinToneCoverage
	}
	if a.TalkingHeadScore > 0.5 {
		mult += 0.2 * a.TalkingHeadScore
	}
	mult += 0.2 * a.SceneComplexity
	mult *= 1 - 0.1*a.TemporalStability
	if a.KeyframeNeeded {
		mult *= 3
	}
	// Error compensation opposes the accumulated error: over-budget
	// history shrinks the next target.
	mult -= 0.1 * c.rateErr
	if mult < 0 {
		mult = 0
	}

	return uint32(float32(baseBitrate) * mult)
}

// UpdateAfterFrame folds the realized frame size into the error EMA
// (alpha = 0.1).
func (c *Controller) UpdateAfterFrame(actualBits, targetBits uint32) {
	c.stats.TotalBits += uint64(actualBits)
	if targetBits == 0 {
		return
	}
	err := (float32(actualBits) - float32(targetBits)) / float32(targetBits)
	c.rateErr = 0.9*c.rateErr + 0.1*err
}

// RateError exposes the accumulated error EMA.
func (c *Controller) RateError() float32 { return c.rateErr }

// Stats returns the lifetime counters.
func (c *Controller) Stats() Stats { return c.stats }

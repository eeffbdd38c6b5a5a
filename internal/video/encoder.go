package video

import (
	"errors"
	"fmt"
	"time"
)

// Thin wrapper over the external AV1 encoder: frames in, OBU packets
// out, with the kip-mode controller deciding each frame's bit budget.
// The binding to the real encoder library registers an EncoderBackend;
// the wrapper owns statistics, rate control, and lifecycle.

var (
	ErrAgain          = errors.New("video: need more input")
	ErrDrained        = errors.New("video: stream drained")
	ErrBackendInit    = errors.New("video: backend initialization failed")
	ErrNotInitialized = errors.New("video: not initialized")
	ErrNoBackend      = errors.New("video: no codec backend registered")
)

// EncoderConfig mirrors the external encoder's initialization surface.
type EncoderConfig struct {
	Width       int
	Height      int
	FPSNum      int
	FPSDen      int
	BitrateKbps int
	// Speed preset 0-10, higher is faster.
	Speed      int
	Threads    int
	LowLatency bool
	// UseKipMode enables the perceptual rate controller.
	UseKipMode bool
	Kip        Config
}

// Frame carries borrowed YUV420 planes for one input frame.
type Frame struct {
	Y, U, V       []byte
	YStride       int
	UVStride      int
	Width, Height int
	PTS           int64
	ForceKeyframe bool
}

// Packet is one encoded OBU unit. The data is a non-owning view valid
// until the next encoder call.
type Packet struct {
	Data        []byte
	PTS         int64
	Keyframe    bool
	FrameNumber uint64
}

// EncoderBackend is the binding point to the external AV1 encoder.
type EncoderBackend interface {
	Init(cfg EncoderConfig) error
	// SendFrame queues a frame with its per-frame bitrate target; nil
	// signals flush.
	SendFrame(f *Frame, targetBitrateKbps uint32) error
	// ReceivePacket returns the next packet, ErrAgain when the encoder
	// needs more input, ErrDrained after a flush completes.
	ReceivePacket() (*Packet, error)
	Close()
}

var newEncoderBackend func() EncoderBackend

// RegisterEncoderBackend installs the backend constructor. The AV1
// binding calls this from its init.
func RegisterEncoderBackend(f func() EncoderBackend) { newEncoderBackend = f }

// EncoderStats tracks frames, bytes and running means.
type EncoderStats struct {
	FramesEncoded     uint64
	BytesEncoded      uint64
	AverageFrameKbits float32
	AverageEncodeMS   float32
	Kip               Stats
}

// Encoder is the frame-in/packet-out wrapper.
type Encoder struct {
	cfg     EncoderConfig
	backend EncoderBackend
	kip     *Controller

	initialized bool
	frameNumber uint64
	lastTarget  uint32
	sendStart   time.Time
	stats       EncoderStats
}

// NewEncoder uses the registered backend.
func NewEncoder() *Encoder {
	var b EncoderBackend
	if newEncoderBackend != nil {
		b = newEncoderBackend()
	}
	return NewEncoderWithBackend(b)
}

// NewEncoderWithBackend injects an explicit backend.
func NewEncoderWithBackend(b EncoderBackend) *Encoder {
	return &Encoder{backend: b}
}

// Init validates the configuration and initializes the backend.
// Backend failures are returned verbatim under ErrBackendInit.
func (e *Encoder) Init(cfg EncoderConfig) error {
	if e.backend == nil {
		return ErrNoBackend
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("video: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Speed < 0 || cfg.Speed > 10 {
		return fmt.Errorf("video: speed %d outside 0-10", cfg.Speed)
	}
	if cfg.FPSNum <= 0 {
		cfg.FPSNum = 30
	}
	if cfg.FPSDen <= 0 {
		cfg.FPSDen = 1
	}
	if err := e.backend.Init(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendInit, err)
	}
	e.cfg = cfg
	if cfg.UseKipMode {
		kipCfg := cfg.Kip
		if kipCfg.TargetBitrateKbps == 0 {
			kipCfg.TargetBitrateKbps = uint32(cfg.BitrateKbps)
		}
		e.kip = NewController(kipCfg)
	}
	e.initialized = true
	return nil
}

// Kip exposes the rate controller (nil when kip-mode is off).
func (e *Encoder) Kip() *Controller { return e.kip }

// SendFrame queues one frame; nil flushes the encoder.
func (e *Encoder) SendFrame(f *Frame) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if f == nil {
		return e.backend.SendFrame(nil, 0)
	}
	if f.Y == nil || f.U == nil || f.V == nil {
		return ErrInvalidFrame
	}

	target := uint32(e.cfg.BitrateKbps)
	if e.kip != nil && f.YStride == f.Width && f.UVStride == (f.Width+1)/2 {
		// Packed planes are concatenated into one I420 buffer for the
		// analysis; the base budget comes from the configured bitrate.
		frame := make([]byte, 0, len(f.Y)+len(f.U)+len(f.V))
		frame = append(frame, f.Y...)
		frame = append(frame, f.U...)
		frame = append(frame, f.V...)
		if a, err := e.kip.AnalyzeFrame(frame, f.Width, f.Height); err == nil {
			if f.ForceKeyframe {
				a.KeyframeNeeded = true
			}
			target = e.kip.FrameBitrate(a, uint32(e.cfg.BitrateKbps))
		}
	}
	e.lastTarget = target

	e.sendStart = time.Now()
	return e.backend.SendFrame(f, target)
}

// ReceivePacket returns the next encoded packet. ErrAgain means feed
// more frames; ErrDrained means the flush completed.
func (e *Encoder) ReceivePacket() (*Packet, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	pkt, err := e.backend.ReceivePacket()
	if err != nil {
		return nil, err
	}
	pkt.FrameNumber = e.frameNumber
	e.frameNumber++

	elapsed := float32(0)
	if !e.sendStart.IsZero() {
		elapsed = float32(time.Since(e.sendStart).Microseconds()) / 1000
	}
	n := float32(e.stats.FramesEncoded)
	e.stats.FramesEncoded++
	e.stats.BytesEncoded += uint64(len(pkt.Data))
	kbits := float32(len(pkt.Data)) * 8 / 1000
	e.stats.AverageFrameKbits = (e.stats.AverageFrameKbits*n + kbits) / (n + 1)
	e.stats.AverageEncodeMS = (e.stats.AverageEncodeMS*n + elapsed) / (n + 1)

	if e.kip != nil && e.lastTarget > 0 {
		targetBits := uint64(e.lastTarget) * 1000 * uint64(e.cfg.FPSDen) / uint64(e.cfg.FPSNum)
		e.kip.UpdateAfterFrame(uint32(len(pkt.Data)*8), uint32(targetBits))
	}
	return pkt, nil
}

// Stats returns the running counters.
func (e *Encoder) Stats() EncoderStats {
	s := e.stats
	if e.kip != nil {
		s.Kip = e.kip.Stats()
	}
	return s
}

// Close releases the backend.
func (e *Encoder) Close() {
	if e.initialized {
		e.backend.Close()
		e.initialized = false
	}
}

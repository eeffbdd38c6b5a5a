package video

import "fmt"

// Thin wrapper over the external AV1 decoder: compressed OBU bytes in,
// YUV420 frames out. Output planes come from a small pre-allocated
// pool; when the pool is dry a fresh allocation is handed out and
// simply never returns to the pool.

// InLoopFilter selects how much of the in-loop filter pipeline the
// decoder applies.
type InLoopFilter int

const (
	InLoopFilterAll InLoopFilter = iota
	InLoopFilterNoDeblock
	InLoopFilterNone
)

// DecoderConfig mirrors the external decoder's initialization surface.
type DecoderConfig struct {
	Threads int
	// MaxFrameDelay 1 selects low-latency operation.
	MaxFrameDelay int
	ApplyGrain    bool
	InLoopFilter  InLoopFilter
	LowLatency    bool
}

// DecodedFrame is one output frame. Pooled frames return to the free
// list through ReleaseFrame; overflow frames are owned by the caller.
type DecodedFrame struct {
	Y, U, V       []byte
	YStride       int
	UVStride      int
	Width, Height int
	PTS           int64
	Keyframe      bool

	pooled bool
}

// DecoderBackend is the binding point to the external AV1 decoder.
type DecoderBackend interface {
	Init(cfg DecoderConfig) error
	SendData(data []byte, pts int64) error
	// NextFrame returns borrowed planes valid until the next backend
	// call; ErrAgain when more data is needed, ErrDrained at flush end.
	NextFrame() (*DecodedFrame, error)
	Flush() error
	Reset()
	Close()
}

var newDecoderBackend func() DecoderBackend

// RegisterDecoderBackend installs the backend constructor.
func RegisterDecoderBackend(f func() DecoderBackend) { newDecoderBackend = f }

// DecoderStats holds the decoder counters. The Decoder updates
// FramesDecoded and BytesProcessed only; AverageDecodeMS and
// DroppedFrames stay zero, and the Decoder has no accessor for them.
type DecoderStats struct {
	FramesDecoded   uint64
	BytesProcessed  uint64
	AverageDecodeMS float32
	DroppedFrames   uint32
}

const framePoolSize = 4

// Decoder is the packet-in/frame-out wrapper.
type Decoder struct {
	cfg     DecoderConfig
	backend DecoderBackend

	initialized bool
	free        []*DecodedFrame
	pooledCount int
	stats       DecoderStats
}

// NewDecoder uses the registered backend.
func NewDecoder() *Decoder {
	var b DecoderBackend
	if newDecoderBackend != nil {
		b = newDecoderBackend()
	}
	return NewDecoderWithBackend(b)
}

// NewDecoderWithBackend injects an explicit backend.
func NewDecoderWithBackend(b DecoderBackend) *Decoder {
	return &Decoder{backend: b}
}

// Init initializes the backend. Failures are returned verbatim under
// ErrBackendInit.
func (d *Decoder) Init(cfg DecoderConfig) error {
	if d.backend == nil {
		return ErrNoBackend
	}
	if err := d.backend.Init(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendInit, err)
	}
	d.cfg = cfg
	d.initialized = true
	return nil
}

// SendData feeds one compressed payload.
func (d *Decoder) SendData(data []byte, pts int64) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if len(data) == 0 {
		return ErrInvalidFrame
	}
	d.stats.BytesProcessed += uint64(len(data))
	return d.backend.SendData(data, pts)
}

// GetFrame returns the next decoded frame, copied into pooled plane
// buffers. ErrAgain means feed more data.
func (d *Decoder) GetFrame() (*DecodedFrame, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	raw, err := d.backend.NextFrame()
	if err != nil {
		return nil, err
	}
	frame := d.takeBuffer(raw.Width, raw.Height)
	frame.Width, frame.Height = raw.Width, raw.Height
	frame.PTS = raw.PTS
	frame.Keyframe = raw.Keyframe
	CopyPlane(frame.Y, frame.YStride, raw.Y, raw.YStride, raw.Width, raw.Height)
	ch := (raw.Height + 1) / 2
	cw := (raw.Width + 1) / 2
	CopyPlane(frame.U, frame.UVStride, raw.U, raw.UVStride, cw, ch)
	CopyPlane(frame.V, frame.UVStride, raw.V, raw.UVStride, cw, ch)

	d.stats.FramesDecoded++
	return frame, nil
}

// Flush drains the last buffered frames; keep calling GetFrame until
// ErrDrained.
func (d *Decoder) Flush() error {
	if !d.initialized {
		return ErrNotInitialized
	}
	return d.backend.Flush()
}

// Reset clears decoder state for seeking. Pooled frames previously
// handed out may be released back afterwards; the pool itself is kept.
func (d *Decoder) Reset() {
	if d.initialized {
		d.backend.Reset()
	}
}

// ReleaseFrame returns a pooled frame to the free list. Overflow
// frames are ignored (caller-owned).
func (d *Decoder) ReleaseFrame(f *DecodedFrame) {
	if f == nil || !f.pooled {
		return
	}
	if len(d.free) < framePoolSize {
		d.free = append(d.free, f)
	}
}

// Close releases the backend and drops the pool.
func (d *Decoder) Close() {
	if d.initialized {
		d.backend.Close()
		d.initialized = false
	}
	d.free = nil
	d.pooledCount = 0
}

func (d *Decoder) takeBuffer(width, height int) *DecodedFrame {
	// Reuse a pooled frame only if it matches the stream geometry.
	for i, f := range d.free {
		if f.Width == width && f.Height == height {
			d.free = append(d.free[:i], d.free[i+1:]...)
			return f
		}
	}
	cw, ch := (width+1)/2, (height+1)/2
	f := &DecodedFrame{
		Y:        make([]byte, width*height),
		U:        make([]byte, cw*ch),
		V:        make([]byte, cw*ch),
		YStride:  width,
		UVStride: cw,
		Width:    width,
		Height:   height,
	}
	// Frames beyond the pool budget stay caller-owned.
	if d.pooledCount < framePoolSize {
		f.pooled = true
		d.pooledCount++
	}
	return f
}

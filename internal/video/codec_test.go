package video

import (
	"bytes"
	"errors"
	"testing"
)

func testFrame(w, h int, pts int64) (*Frame, []byte) {
	buf := makeFrame(w, h, 150, 110, 160)
	y, u, v := I420Planes(buf, w, h)
	return &Frame{
		Y: y, U: u, V: v,
		YStride: w, UVStride: (w + 1) / 2,
		Width: w, Height: h,
		PTS: pts,
	}, buf
}

func TestEncoderRoundTripThroughDecoder(t *testing.T) {
	enc := NewEncoderWithBackend(&loopbackEncoder{})
	err := enc.Init(EncoderConfig{
		Width: 32, Height: 32,
		FPSNum: 30, FPSDen: 1,
		BitrateKbps: 800,
		Speed:       6,
		UseKipMode:  true,
		Kip:         DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer enc.Close()

	frame, original := testFrame(32, 32, 42)
	if err := enc.SendFrame(frame); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}
	pkt, err := enc.ReceivePacket()
	if err != nil {
		t.Fatalf("ReceivePacket: %v", err)
	}
	if pkt.PTS != 42 || pkt.FrameNumber != 0 {
		t.Fatalf("packet = %+v", pkt)
	}

	dec := NewDecoderWithBackend(&loopbackDecoder{})
	if err := dec.Init(DecoderConfig{Threads: 1, MaxFrameDelay: 1, LowLatency: true}); err != nil {
		t.Fatalf("decoder Init: %v", err)
	}
	defer dec.Close()

	if err := dec.SendData(pkt.Data, pkt.PTS); err != nil {
		t.Fatalf("SendData: %v", err)
	}
	out, err := dec.GetFrame()
	if err != nil {
		t.Fatalf("GetFrame: %v", err)
	}
	if out.Width != 32 || out.Height != 32 || out.PTS != 42 {
		t.Fatalf("frame = %dx%d pts %d", out.Width, out.Height, out.PTS)
	}
	rebuilt := make([]byte, I420Size(32, 32))
	y, u, v := I420Planes(rebuilt, 32, 32)
	copy(y, out.Y)
	copy(u, out.U)
	copy(v, out.V)
	if !bytes.Equal(rebuilt, original) {
		t.Fatal("decoded planes differ from input")
	}
}

func TestEncoderFlushSemantics(t *testing.T) {
	enc := NewEncoderWithBackend(&loopbackEncoder{})
	if err := enc.Init(EncoderConfig{Width: 16, Height: 16, BitrateKbps: 500, Speed: 6}); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.ReceivePacket(); !errors.Is(err, ErrAgain) {
		t.Fatalf("empty encoder: %v", err)
	}
	frame, _ := testFrame(16, 16, 1)
	if err := enc.SendFrame(frame); err != nil {
		t.Fatal(err)
	}
	if err := enc.SendFrame(nil); err != nil { // flush
		t.Fatal(err)
	}
	if _, err := enc.ReceivePacket(); err != nil {
		t.Fatalf("packet after flush: %v", err)
	}
	if _, err := enc.ReceivePacket(); !errors.Is(err, ErrDrained) {
		t.Fatalf("drained encoder: %v", err)
	}
}

func TestEncoderStats(t *testing.T) {
	enc := NewEncoderWithBackend(&loopbackEncoder{})
	if err := enc.Init(EncoderConfig{Width: 16, Height: 16, BitrateKbps: 500, Speed: 6}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		frame, _ := testFrame(16, 16, int64(i))
		if err := enc.SendFrame(frame); err != nil {
			t.Fatal(err)
		}
		if _, err := enc.ReceivePacket(); err != nil {
			t.Fatal(err)
		}
	}
	s := enc.Stats()
	if s.FramesEncoded != 3 {
		t.Fatalf("frames = %d", s.FramesEncoded)
	}
	wantBytes := uint64(3 * (16 + I420Size(16, 16)))
	if s.BytesEncoded != wantBytes {
		t.Fatalf("bytes = %d, want %d", s.BytesEncoded, wantBytes)
	}
	if s.AverageFrameKbits <= 0 {
		t.Fatalf("avg kbits = %v", s.AverageFrameKbits)
	}
}

func TestEncoderInitErrors(t *testing.T) {
	enc := NewEncoderWithBackend(&loopbackEncoder{})
	if err := enc.Init(EncoderConfig{Width: 0, Height: 16}); err == nil {
		t.Fatal("zero width accepted")
	}
	if err := enc.Init(EncoderConfig{Width: 16, Height: 16, Speed: 11}); err == nil {
		t.Fatal("speed 11 accepted")
	}

	failing := &loopbackEncoder{failInit: errors.New("codec says no")}
	enc = NewEncoderWithBackend(failing)
	err := enc.Init(EncoderConfig{Width: 16, Height: 16, Speed: 6})
	if !errors.Is(err, ErrBackendInit) {
		t.Fatalf("backend failure: %v", err)
	}

	none := NewEncoderWithBackend(nil)
	if err := none.Init(EncoderConfig{Width: 16, Height: 16}); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("nil backend: %v", err)
	}

	uninit := NewEncoderWithBackend(&loopbackEncoder{})
	if err := uninit.SendFrame(nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("uninitialized send: %v", err)
	}
}

func TestDecoderPoolReuse(t *testing.T) {
	backend := &loopbackDecoder{}
	dec := NewDecoderWithBackend(backend)
	if err := dec.Init(DecoderConfig{}); err != nil {
		t.Fatal(err)
	}
	enc := &loopbackEncoder{}
	enc.Init(EncoderConfig{Width: 16, Height: 16})
	frame, _ := testFrame(16, 16, 0)
	enc.SendFrame(frame, 0)
	pkt, _ := enc.ReceivePacket()

	// First frame comes from the pool budget.
	dec.SendData(pkt.Data, 0)
	f1, err := dec.GetFrame()
	if err != nil {
		t.Fatal(err)
	}
	if !f1.pooled {
		t.Fatal("first frame not pooled")
	}
	dec.ReleaseFrame(f1)

	// The released buffer is reused for the next same-geometry frame.
	enc.SendFrame(frame, 0)
	pkt2, _ := enc.ReceivePacket()
	dec.SendData(pkt2.Data, 0)
	f2, err := dec.GetFrame()
	if err != nil {
		t.Fatal(err)
	}
	if &f1.Y[0] != &f2.Y[0] {
		t.Fatal("pooled buffer not reused")
	}

	// Exhaust the pool: frames beyond the budget are caller-owned.
	var held []*DecodedFrame
	held = append(held, f2)
	for i := 0; i < framePoolSize+2; i++ {
		enc.SendFrame(frame, 0)
		p, _ := enc.ReceivePacket()
		dec.SendData(p.Data, 0)
		f, err := dec.GetFrame()
		if err != nil {
			t.Fatal(err)
		}
		held = append(held, f)
	}
	pooled := 0
	for _, f := range held {
		if f.pooled {
			pooled++
		}
	}
	if pooled != framePoolSize {
		t.Fatalf("pooled frames = %d, want %d", pooled, framePoolSize)
	}
}

func TestDecoderFlushAndReset(t *testing.T) {
	backend := &loopbackDecoder{}
	dec := NewDecoderWithBackend(backend)
	if err := dec.Init(DecoderConfig{}); err != nil {
		t.Fatal(err)
	}
	if _, err := dec.GetFrame(); !errors.Is(err, ErrAgain) {
		t.Fatalf("empty decoder: %v", err)
	}
	if err := dec.Flush(); err != nil {
		t.Fatal(err)
	}
	if _, err := dec.GetFrame(); !errors.Is(err, ErrDrained) {
		t.Fatalf("drained decoder: %v", err)
	}
	dec.Reset()
	if _, err := dec.GetFrame(); !errors.Is(err, ErrAgain) {
		t.Fatalf("after reset: %v", err)
	}
}

func TestDecoderValidation(t *testing.T) {
	dec := NewDecoderWithBackend(&loopbackDecoder{})
	if err := dec.SendData([]byte{1}, 0); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("uninitialized: %v", err)
	}
	if err := dec.Init(DecoderConfig{}); err != nil {
		t.Fatal(err)
	}
	if err := dec.SendData(nil, 0); !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("empty payload: %v", err)
	}
	none := NewDecoderWithBackend(nil)
	if err := none.Init(DecoderConfig{}); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("nil backend: %v", err)
	}
}

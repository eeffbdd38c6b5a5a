package video

import (
	"encoding/binary"
	"errors"
)

// Loopback codec pair for wrapper tests: the "encoder" serializes
// frames into self-describing packets and the "decoder" plays them
// back. It exercises the wrapper contracts without the external
// library.

type loopbackPacket struct {
	data []byte
	pts  int64
	key  bool
}

type loopbackEncoder struct {
	cfg      EncoderConfig
	queue    []loopbackPacket
	flushed  bool
	failInit error
}

func (e *loopbackEncoder) Init(cfg EncoderConfig) error {
	if e.failInit != nil {
		return e.failInit
	}
	e.cfg = cfg
	return nil
}

func (e *loopbackEncoder) SendFrame(f *Frame, target uint32) error {
	if f == nil {
		e.flushed = true
		return nil
	}
	w, h := f.Width, f.Height
	buf := make([]byte, 16+I420Size(w, h))
	binary.LittleEndian.PutUint32(buf[0:], uint32(w))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h))
	binary.LittleEndian.PutUint64(buf[8:], uint64(f.PTS))
	payload := buf[16:]
	y, u, v := I420Planes(payload, w, h)
	CopyPlane(y, w, f.Y, f.YStride, w, h)
	cw, ch := (w+1)/2, (h+1)/2
	CopyPlane(u, cw, f.U, f.UVStride, cw, ch)
	CopyPlane(v, cw, f.V, f.UVStride, cw, ch)
	e.queue = append(e.queue, loopbackPacket{data: buf, pts: f.PTS, key: f.ForceKeyframe})
	return nil
}

func (e *loopbackEncoder) ReceivePacket() (*Packet, error) {
	if len(e.queue) == 0 {
		if e.flushed {
			return nil, ErrDrained
		}
		return nil, ErrAgain
	}
	p := e.queue[0]
	e.queue = e.queue[1:]
	return &Packet{Data: p.data, PTS: p.pts, Keyframe: p.key}, nil
}

func (e *loopbackEncoder) Close() {}

type loopbackDecoder struct {
	queue   []loopbackPacket
	flushed bool
	frame   DecodedFrame
}

func (d *loopbackDecoder) Init(cfg DecoderConfig) error { return nil }

func (d *loopbackDecoder) SendData(data []byte, pts int64) error {
	if len(data) < 16 {
		return errors.New("loopback: short packet")
	}
	d.queue = append(d.queue, loopbackPacket{data: data, pts: pts})
	return nil
}

func (d *loopbackDecoder) NextFrame() (*DecodedFrame, error) {
	if len(d.queue) == 0 {
		if d.flushed {
			return nil, ErrDrained
		}
		return nil, ErrAgain
	}
	p := d.queue[0]
	d.queue = d.queue[1:]
	w := int(binary.LittleEndian.Uint32(p.data[0:]))
	h := int(binary.LittleEndian.Uint32(p.data[4:]))
	pts := int64(binary.LittleEndian.Uint64(p.data[8:]))
	y, u, v := I420Planes(p.data[16:], w, h)
	d.frame = DecodedFrame{
		Y: y, U: u, V: v,
		YStride: w, UVStride: (w + 1) / 2,
		Width: w, Height: h,
		PTS: pts,
	}
	return &d.frame, nil
}

func (d *loopbackDecoder) Flush() error {
	d.flushed = true
	return nil
}

func (d *loopbackDecoder) Reset() {
	d.queue = nil
	d.flushed = false
}

func (d *loopbackDecoder) Close() {}

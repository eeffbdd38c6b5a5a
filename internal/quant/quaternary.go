package quant

// Quaternary (1.58-bit nominal) codec: codebook {−1.5, −0.5, +0.5,
// +1.5}, two-bit codes in ascending order 00..11. The block scale is
// maxAbs/1.5 so the largest element lands exactly on ±1.5.

var quaternaryLevels = [4]float32{-1.5, -0.5, 0.5, 1.5}

// QuantizeQuaternary encodes weights into out with one Meta entry per
// block.
func (q *Quantizer) QuantizeQuaternary(weights []float32, out []byte, meta []Meta, block uint32, cfg *Config) error {
	lane, caps := q.snapshot()
	block = resolveBlock(block, cfg, caps)
	if err := validateQuantArgs(weights, out, meta, block); err != nil {
		return err
	}
	return quantizeQuaternary(weights, out, meta, block, progressOf(cfg), lane && aligned16(weights))
}

func quantizeQuaternary(weights []float32, out []byte, meta []Meta, block uint32, progress func(float32), lane bool) error {
	count := len(weights)
	numBlocks := MetaCount(count, block)
	bw := bitWriter{buf: out}

	for b := 0; b < numBlocks; b++ {
		if progress != nil && numBlocks > 100 {
			progress(float32(b) / float32(numBlocks))
		}
		start := b * int(block)
		end := start + int(block)
		if end > count {
			end = count
		}
		blk := weights[start:end]

		scale := maxAbs(blk, lane) / 1.5
		if scale == 0 {
			scale = 1
		}
		if !validScale(scale) {
			return ErrInvalidScale
		}
		inv := 1 / scale

		meta[b] = Meta{Scale: scale, ZeroPoint: 0, BlockSize: block, Codebook: 4}

		for _, v := range blk {
			n := v * inv
			var code byte
			switch {
			case n > 1:
				code = 0b11
			case n > 0:
				code = 0b10
			case n > -1:
				code = 0b01
			default:
				code = 0b00
			}
			if err := bw.write2(code); err != nil {
				return err
			}
		}
	}
	if err := bw.flush(); err != nil {
		return err
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// DequantizeQuaternary decodes len(out) weights from the packed
// stream.
func (q *Quantizer) DequantizeQuaternary(in []byte, out []float32, meta []Meta, block uint32) error {
	if block == 0 && len(meta) > 0 {
		block = meta[0].BlockSize
	}
	if block == 0 {
		block = 128
	}
	if err := validateDequantArgs(in, out, meta, block); err != nil {
		return err
	}
	return dequantizeQuaternary(in, out, meta, block)
}

func dequantizeQuaternary(in []byte, out []float32, meta []Meta, block uint32) error {
	count := len(out)
	numBlocks := MetaCount(count, block)
	br := bitReader{buf: in}

	for b := 0; b < numBlocks; b++ {
		scale := meta[b].Scale
		if !validScale(scale) {
			return ErrInvalidScale
		}
		start := b * int(block)
		end := start + int(block)
		if end > count {
			end = count
		}
		for i := start; i < end; i++ {
			code, err := br.read2()
			if err != nil {
				return err
			}
			out[i] = quaternaryLevels[code] * scale
		}
	}
	return nil
}

// QuantizeQuaternaryOK is the legacy boolean wrapper.
func (q *Quantizer) QuantizeQuaternaryOK(weights []float32, out []byte, meta []Meta, block uint32) bool {
	return q.QuantizeQuaternary(weights, out, meta, block, nil) == nil
}

// DequantizeQuaternaryOK is the legacy boolean wrapper.
func (q *Quantizer) DequantizeQuaternaryOK(in []byte, out []float32, meta []Meta, block uint32) bool {
	return q.DequantizeQuaternary(in, out, meta, block) == nil
}

package quant

// Ternary (1.28-bit nominal) codec: codebook {−1, 0, +1}, two-bit codes
// −1→00, 0→01, +1→10. Code 11 is never emitted.

const (
	ternaryCodeNeg  = 0b00
	ternaryCodeZero = 0b01
	ternaryCodePos  = 0b10
)

// QuantizeTernary encodes weights into out with one Meta entry per
// block. block 0 selects the size from cfg or the hardware cache.
func (q *Quantizer) QuantizeTernary(weights []float32, out []byte, meta []Meta, block uint32, cfg *Config) error {
	lane, caps := q.snapshot()
	block = resolveBlock(block, cfg, caps)
	if err := validateQuantArgs(weights, out, meta, block); err != nil {
		return err
	}
	threshold := resolveThreshold(weights, cfg, caps)
	return quantizeTernary(weights, out, meta, block, threshold, progressOf(cfg), lane && aligned16(weights))
}

func quantizeTernary(weights []float32, out []byte, meta []Meta, block uint32, threshold float32, progress func(float32), lane bool) error {
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

		scale := maxAbs(blk, lane)
		if scale == 0 {
			scale = 1
		}
		if !validScale(scale) {
			return ErrInvalidScale
		}
		inv := 1 / scale

		meta[b] = Meta{Scale: scale, ZeroPoint: 0, BlockSize: block, Codebook: 3}

		for _, v := range blk {
			n := v * inv
			code := byte(ternaryCodeZero)
			if n > threshold {
				code = ternaryCodePos
			} else if n < -threshold {
				code = ternaryCodeNeg
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

// DequantizeTernary decodes len(out) weights from the packed stream.
// block 0 takes the size recorded in the metadata.
func (q *Quantizer) DequantizeTernary(in []byte, out []float32, meta []Meta, block uint32) error {
	if block == 0 && len(meta) > 0 {
		block = meta[0].BlockSize
	}
	if block == 0 {
		block = 128
	}
	if err := validateDequantArgs(in, out, meta, block); err != nil {
		return err
	}
	return dequantizeTernary(in, out, meta, block)
}

func dequantizeTernary(in []byte, out []float32, meta []Meta, block uint32) error {
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
			switch code {
			case ternaryCodeNeg:
				out[i] = -scale
			case ternaryCodeZero:
				out[i] = 0
			case ternaryCodePos:
				out[i] = scale
			default:
				// Only reachable through stream corruption.
				return ErrCorruptStream
			}
		}
	}
	return nil
}

// QuantizeTernaryOK is the legacy boolean wrapper.
func (q *Quantizer) QuantizeTernaryOK(weights []float32, out []byte, meta []Meta, block uint32) bool {
	return q.QuantizeTernary(weights, out, meta, block, nil) == nil
}

// DequantizeTernaryOK is the legacy boolean wrapper.
func (q *Quantizer) DequantizeTernaryOK(in []byte, out []float32, meta []Meta, block uint32) bool {
	return q.DequantizeTernary(in, out, meta, block) == nil
}

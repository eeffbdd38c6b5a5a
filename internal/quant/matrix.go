package quant

import (
	"sync"

	"github.com/kipepeo-ai/KipepeoAI/internal/kernels"
)

// Matrix layout: M rows of K weights, each row packed into its own
// byte-aligned stream of PackedRowBytes(K) bytes, metadata indexed as
// meta[row*blocksPerRow + block].

func validateMatrixArgs(weights []float32, m, k int, out []byte, meta []Meta, block uint32) error {
	if weights == nil || out == nil || meta == nil {
		return ErrNilInput
	}
	if m <= 0 || k <= 0 || len(weights) < m*k {
		return ErrInvalidCount
	}
	if !isPow2(block) {
		return ErrInvalidBlockSize
	}
	if len(out) < m*PackedRowBytes(k) {
		return ErrBufferTooSmall
	}
	if len(meta) < m*MetaCount(k, block) {
		return ErrBufferTooSmall
	}
	return nil
}

type rowEncoder func(row []float32, out []byte, meta []Meta, block uint32) error

// QuantizeMatrixTernary quantizes an M×K matrix row by row. With a
// progress callback the rows run serially and progress is reported per
// row once M > 10; without one the rows are fanned out across the
// configured worker count.
func (q *Quantizer) QuantizeMatrixTernary(weights []float32, m, k int, out []byte, meta []Meta, block uint32, cfg *Config) error {
	lane, caps := q.snapshot()
	block = resolveBlock(block, cfg, caps)
	if err := validateMatrixArgs(weights, m, k, out, meta, block); err != nil {
		return err
	}
	threshold := resolveThreshold(weights[:m*k], cfg, caps)
	laneOK := lane && aligned16(weights)
	enc := func(row []float32, rowOut []byte, rowMeta []Meta, block uint32) error {
		return quantizeTernary(row, rowOut, rowMeta, block, threshold, nil, laneOK)
	}
	return q.quantizeMatrix(weights, m, k, out, meta, block, cfg, caps.MaxConcurrentOps, enc)
}

// QuantizeMatrixQuaternary is QuantizeMatrixTernary for the four-level
// codebook.
func (q *Quantizer) QuantizeMatrixQuaternary(weights []float32, m, k int, out []byte, meta []Meta, block uint32, cfg *Config) error {
	lane, caps := q.snapshot()
	block = resolveBlock(block, cfg, caps)
	if err := validateMatrixArgs(weights, m, k, out, meta, block); err != nil {
		return err
	}
	laneOK := lane && aligned16(weights)
	enc := func(row []float32, rowOut []byte, rowMeta []Meta, block uint32) error {
		return quantizeQuaternary(row, rowOut, rowMeta, block, nil, laneOK)
	}
	return q.quantizeMatrix(weights, m, k, out, meta, block, cfg, caps.MaxConcurrentOps, enc)
}

func (q *Quantizer) quantizeMatrix(weights []float32, m, k int, out []byte, meta []Meta, block uint32, cfg *Config, maxOps int, enc rowEncoder) error {
	bpr := MetaCount(k, block)
	rowBytes := PackedRowBytes(k)
	progress := progressOf(cfg)

	workers := 1
	if progress == nil {
		workers = maxOps
		if cfg != nil && cfg.Workers > 0 {
			workers = cfg.Workers
		}
		if workers > m {
			workers = m
		}
	}

	rowSlice := func(row int) ([]float32, []byte, []Meta) {
		return weights[row*k : (row+1)*k],
			out[row*rowBytes : (row+1)*rowBytes],
			meta[row*bpr : (row+1)*bpr]
	}

	if workers <= 1 {
		for row := 0; row < m; row++ {
			rw, ro, rm := rowSlice(row)
			if err := enc(rw, ro, rm, block); err != nil {
				return err
			}
			if progress != nil && m > 10 {
				progress(float32(row+1) / float32(m))
			}
		}
		if progress != nil {
			progress(1)
		}
		return nil
	}

	// Row-chunked fan-out; the first error wins.
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	chunk := (m + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > m {
			end = m
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for row := start; row < end; row++ {
				rw, ro, rm := rowSlice(row)
				if err := enc(rw, ro, rm, block); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
			}
		}(start, end)
	}
	wg.Wait()
	return firstErr
}

func validateMatVecArgs(aq []byte, meta []Meta, x, y []float32, m, k int) error {
	if aq == nil || meta == nil || x == nil || y == nil {
		return ErrNilInput
	}
	if m <= 0 || k <= 0 {
		return ErrInvalidCount
	}
	if len(meta) == 0 {
		return ErrBufferTooSmall
	}
	if len(x) < k || len(y) < m {
		return ErrBufferTooSmall
	}
	if len(aq) < m*PackedRowBytes(k) {
		return ErrBufferTooSmall
	}
	return nil
}

// MatVecMulTernary computes Y = A·X over a ternary-quantized matrix
// (α = 1, β = 0): the per-block scales are pulled out of the metadata
// into the flat layout the kernels consume, validated, and handed to
// the dispatched GEMV.
func (q *Quantizer) MatVecMulTernary(aq []byte, meta []Meta, x, y []float32, m, k int) error {
	scales, block, err := extractScales(aq, meta, x, y, m, k)
	if err != nil {
		return err
	}
	kernels.GemvTernary(m, k, 1, aq, scales, x, 0, y, int(block))
	return nil
}

// MatVecMulQuaternary is MatVecMulTernary over the quaternary
// codebook.
func (q *Quantizer) MatVecMulQuaternary(aq []byte, meta []Meta, x, y []float32, m, k int) error {
	scales, block, err := extractScales(aq, meta, x, y, m, k)
	if err != nil {
		return err
	}
	kernels.GemvQuaternary(m, k, 1, aq, scales, x, 0, y, int(block))
	return nil
}

func extractScales(aq []byte, meta []Meta, x, y []float32, m, k int) ([]float32, uint32, error) {
	if err := validateMatVecArgs(aq, meta, x, y, m, k); err != nil {
		return nil, 0, err
	}
	block := meta[0].BlockSize
	if block == 0 {
		block = 128
	}
	bpr := MetaCount(k, block)
	if len(meta) < m*bpr {
		return nil, 0, ErrBufferTooSmall
	}
	scales := make([]float32, m*bpr)
	for i, mt := range meta[:m*bpr] {
		if !validScale(mt.Scale) {
			return nil, 0, ErrInvalidScale
		}
		scales[i] = mt.Scale
	}
	return scales, block, nil
}

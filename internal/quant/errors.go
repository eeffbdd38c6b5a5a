package quant

import "errors"

// Every validation predicate gets a distinct error so callers can
// discriminate with errors.Is.
var (
	ErrNilInput             = errors.New("quant: nil input")
	ErrInvalidCount         = errors.New("quant: zero element count")
	ErrInvalidBlockSize     = errors.New("quant: block size must be a positive power of two")
	ErrUnsupportedBlockSize = errors.New("quant: block size outside supported set {64, 128, 256}")
	ErrBufferTooSmall       = errors.New("quant: output buffer smaller than required size")
	ErrBufferOverflow       = errors.New("quant: write past output buffer bound")
	ErrInvalidScale         = errors.New("quant: block scale not finite and positive")
	ErrCorruptStream        = errors.New("quant: quantized code outside codebook")
)

package kernels

import (
	"sync"

	"github.com/kipepeo-ai/KipepeoAI/internal/chip"
)

// One dispatcher per operation. The impl vars are installed once from
// the detected chip; unknown parts fall through to the generic kernels.

var (
	matMulF32Impl      = matMulF32Generic
	matMulF16Impl      = matMulF16Widen
	gemvTernaryImpl    = gemvTernaryGeneric
	gemvQuaternaryImpl = gemvQuaternaryGeneric
)

var dispatchOnce sync.Once

func ensureDispatch() {
	dispatchOnce.Do(func() { install(chip.Detect()) })
}

// Install pins the kernel variants for c instead of the detected chip.
// Tests use it to run every dispatch path on one host.
func Install(c chip.Type) {
	dispatchOnce.Do(func() {})
	install(c)
}

func install(c chip.Type) {
	if forceGeneric() {
		c = chip.Unknown
	}
	switch c {
	case chip.HelioG85:
		matMulF32Impl = helioG85MatMulF32
		gemvTernaryImpl = helioGemvTernary
		gemvQuaternaryImpl = helioGemvQuaternary
	case chip.HelioG99, chip.HelioG100:
		matMulF32Impl = helioG99MatMulF32
		gemvTernaryImpl = helioGemvTernary
		gemvQuaternaryImpl = helioGemvQuaternary
	case chip.UnisocT606:
		matMulF32Impl = t606MatMulF32
		gemvTernaryImpl = t606GemvTernary
		gemvQuaternaryImpl = t606GemvQuaternary
	case chip.Snapdragon7sGen2:
		matMulF32Impl = snapdragonMatMulF32
		gemvTernaryImpl = snapdragonGemvTernary
		gemvQuaternaryImpl = snapdragonGemvQuaternary
	default:
		if c.IsApple() {
			matMulF32Impl = appleMatMulF32
			gemvTernaryImpl = appleGemvTernary
			gemvQuaternaryImpl = appleGemvQuaternary
		} else {
			matMulF32Impl = matMulF32Generic
			gemvTernaryImpl = gemvTernaryGeneric
			gemvQuaternaryImpl = gemvQuaternaryGeneric
		}
	}

	switch {
	case !c.SupportsFP16():
		matMulF16Impl = matMulF16Widen
	case c == chip.HelioG99 || c == chip.HelioG100:
		matMulF16Impl = helioMatMulF16
	case c == chip.Snapdragon7sGen2:
		matMulF16Impl = snapdragonMatMulF16
	default:
		matMulF16Impl = appleMatMulF16
	}
}

func matMulF32Generic(a, b, c []float32, m, n, k int) {
	matMulF32Blocked(a, b, c, m, n, k, 4, 4)
}

// MatMulF32 computes C = A·B for row-major float32 matrices.
func MatMulF32(a, b, c []float32, m, n, k int) {
	ensureDispatch()
	matMulF32Impl(a, b, c, m, n, k)
}

// MatMulF16 computes C = A·B for half-precision matrices stored as
// uint16. Chips without native FP16 widen to float32 at the boundary.
func MatMulF16(a, b, c []uint16, m, n, k int) {
	ensureDispatch()
	matMulF16Impl(a, b, c, m, n, k)
}

// GemvTernary computes Y ← α·A·X + β·Y over a two-bit ternary packed
// matrix with per-block scales laid out as scales[row*bpr+block].
func GemvTernary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	ensureDispatch()
	gemvTernaryImpl(m, k, alpha, aq, scales, x, beta, y, block)
}

// GemvQuaternary is GemvTernary for the four-level codebook.
func GemvQuaternary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	ensureDispatch()
	gemvQuaternaryImpl(m, k, alpha, aq, scales, x, beta, y, block)
}

package kernels

// Unisoc T606: Cortex-A75/A55, small shared L3, no native FP16. The
// tile stays at 4x4 and the GEMV leans on cache reuse rather than
// deeper unrolling.

func t606MatMulF32(a, b, c []float32, m, n, k int) {
	matMulF32Blocked(a, b, c, m, n, k, 4, 4)
}

func t606GemvTernary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPacked(&ternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

func t606GemvQuaternary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPacked(&quaternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

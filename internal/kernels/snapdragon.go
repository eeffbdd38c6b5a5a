package kernels

// Snapdragon 7s Gen 2: Cortex-A78/A55 with 512KB L2. Big-core tile is
// 8x8 and the K loop runs the deep-unroll kernel (the A78 front end
// keeps eight independent chains in flight where smaller cores stall).

func snapdragonMatMulF32(a, b, c []float32, m, n, k int) {
	matMulF32BlockedDeep(a, b, c, m, n, k, 8, 8)
}

func snapdragonMatMulF16(a, b, c []uint16, m, n, k int) {
	matMulF16Blocked(a, b, c, m, n, k, 12, 12)
}

func snapdragonGemvTernary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPackedWide(&ternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

func snapdragonGemvQuaternary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPackedWide(&quaternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

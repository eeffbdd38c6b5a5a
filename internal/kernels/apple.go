package kernels

// Apple firestorm/icestorm: large unified caches take aggressive 16x16
// blocking on the performance cores; FP16 is native on every supported
// generation.

func appleMatMulF32(a, b, c []float32, m, n, k int) {
	matMulF32BlockedDeep(a, b, c, m, n, k, 16, 16)
}

func appleMatMulF16(a, b, c []uint16, m, n, k int) {
	matMulF16Blocked(a, b, c, m, n, k, 16, 16)
}

func appleGemvTernary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPackedWide(&ternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

func appleGemvQuaternary(m, k int, alpha float32, aq []byte, scales []float32, x []float32, beta float32, y []float32, block int) {
	gemvPackedWide(&quaternaryLevels, m, k, alpha, aq, scales, x, beta, y, block)
}

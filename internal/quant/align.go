package quant

import "unsafe"

// aligned16 reports whether the slice data starts on a 16-byte
// boundary, the requirement for the lane-accelerated loads. Misaligned
// input is not an error; callers fall back to the scalar path.
func aligned16(s []float32) bool {
	if len(s) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&s[0]))%16 == 0
}

// maxAbs returns the largest absolute value in the block. The lane
// variant mirrors the vector max reduction: four independent partial
// maxima folded at the end.
func maxAbs(blk []float32, lane bool) float32 {
	if !lane {
		var m float32
		for _, v := range blk {
			if v < 0 {
				v = -v
			}
			if v > m {
				m = v
			}
		}
		return m
	}

	var m0, m1, m2, m3 float32
	i := 0
	for ; i+3 < len(blk); i += 4 {
		v0, v1, v2, v3 := blk[i], blk[i+1], blk[i+2], blk[i+3]
		if v0 < 0 {
			v0 = -v0
		}
		if v1 < 0 {
			v1 = -v1
		}
		if v2 < 0 {
			v2 = -v2
		}
		if v3 < 0 {
			v3 = -v3
		}
		if v0 > m0 {
			m0 = v0
		}
		if v1 > m1 {
			m1 = v1
		}
		if v2 > m2 {
			m2 = v2
		}
		if v3 > m3 {
			m3 = v3
		}
	}
	if m1 > m0 {
		m0 = m1
	}
	if m2 > m0 {
		m0 = m2
	}
	if m3 > m0 {
		m0 = m3
	}
	for ; i < len(blk); i++ {
		v := blk[i]
		if v < 0 {
			v = -v
		}
		if v > m0 {
			m0 = v
		}
	}
	return m0
}

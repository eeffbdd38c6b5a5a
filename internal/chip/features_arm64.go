//go:build arm64

package chip

import "golang.org/x/sys/cpu"

// HasNEON reports whether the host advertises Advanced SIMD. On darwin
// the kernel does not populate the hwcap bits, but ASIMD is baseline for
// every Apple arm64 part.
func HasNEON() bool {
	return cpu.ARM64.HasASIMD || isDarwin
}

// HasFP16 reports whether the host advertises half-precision NEON
// arithmetic (ARMv8.2 ASIMDHP).
func HasFP16() bool {
	return cpu.ARM64.HasASIMDHP || isDarwin
}

//go:build !arm64

package chip

// HasNEON reports false off arm64; the kernels run their portable path.
func HasNEON() bool { return false }

// HasFP16 reports false off arm64.
func HasFP16() bool { return false }

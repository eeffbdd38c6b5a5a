//go:build darwin

package chip

import (
	"os/exec"
	"strings"
)

func detectPlatform() Type {
	out, err := exec.Command("sysctl", "-n", "machdep.cpu.brand_string").Output()
	if err == nil {
		if t := Match(strings.TrimSpace(string(out)), "", "", ""); t != Unknown {
			return t
		}
	}
	// Apple Silicon with an unrecognized brand string still gets the
	// Apple blocking profile.
	return AppleM1
}

//go:build linux

package chip

import (
	"os"
	"os/exec"
	"strings"
)

func detectPlatform() Type {
	cpuinfo, _ := os.ReadFile("/proc/cpuinfo")

	// Android exposes the board identity through system properties;
	// getprop is present on every Android image.
	platform := getprop("ro.board.platform")
	chipname := getprop("ro.chipname")
	hardware := getprop("ro.hardware")

	return Match(string(cpuinfo), platform, chipname, hardware)
}

func getprop(key string) string {
	out, err := exec.Command("getprop", key).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

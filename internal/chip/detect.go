package chip

import (
	"os"
	"strings"
	"sync"
)

var (
	detectOnce sync.Once
	detected   Type
)

// Detect identifies the SoC. The first call performs the platform probe;
// later calls return the cached identity. KIPEPEO_CHIP overrides the
// probe (accepted values match the probe identifiers, e.g. "mt6789",
// "sm7435", "t606", "m1").
func Detect() Type {
	detectOnce.Do(func() {
		if env := os.Getenv("KIPEPEO_CHIP"); env != "" {
			detected = Match(env, "", "", "")
			return
		}
		detected = detectPlatform()
	})
	return detected
}

// Match resolves a chip type from the processor description and board
// identifiers. All matching is case-insensitive substring matching on
// vendor part numbers and Cortex core complexes. The pure matcher is
// exposed so the platform-specific probes and the tests share one rule
// set.
func Match(cpuinfo, boardPlatform, chipname, hardware string) Type {
	platform := strings.ToLower(boardPlatform)
	switch {
	case strings.Contains(platform, "mt6769"):
		return HelioG85
	case strings.Contains(platform, "mt6789"):
		return HelioG99
	case strings.Contains(platform, "mt6791"):
		return HelioG100
	case strings.Contains(platform, "lahaina"), strings.Contains(platform, "taro"):
		return Snapdragon7sGen2
	}

	if strings.Contains(strings.ToLower(chipname), "t606") {
		return UnisocT606
	}

	hw := strings.ToLower(hardware)
	switch {
	case strings.Contains(hw, "mt6769"):
		return HelioG85
	case strings.Contains(hw, "mt6789"):
		return HelioG99
	case strings.Contains(hw, "mt6791"):
		return HelioG100
	}

	info := strings.ToLower(cpuinfo)
	switch {
	case strings.Contains(info, "mt6769"), strings.Contains(info, "helio g85"):
		return HelioG85
	case strings.Contains(info, "mt6789"), strings.Contains(info, "helio g99"):
		return HelioG99
	case strings.Contains(info, "mt6791"), strings.Contains(info, "helio g100"):
		return HelioG100
	case strings.Contains(info, "sm7435"), strings.Contains(info, "snapdragon 7s gen 2"):
		return Snapdragon7sGen2
	case strings.Contains(info, "t606"):
		return UnisocT606
	case strings.Contains(info, "apple m1"), info == "m1":
		return AppleM1
	case strings.Contains(info, "apple m2"), info == "m2":
		return AppleM2
	case strings.Contains(info, "apple m3"), info == "m3":
		return AppleM3
	case strings.Contains(info, "apple m4"), info == "m4":
		return AppleM4
	}

	// No part number matched: infer the family from the core complex.
	if strings.Contains(info, "cortex-a55") {
		switch {
		case strings.Contains(info, "cortex-a76"):
			return HelioG99
		case strings.Contains(info, "cortex-a78"):
			return Snapdragon7sGen2
		case strings.Contains(info, "cortex-a75"):
			return UnisocT606
		}
	}

	return Unknown
}

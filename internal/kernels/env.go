package kernels

import (
	"os"
	"strconv"
)

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

var forceGenericFlag = os.Getenv("KIPEPEO_FORCE_GENERIC") == "1"

func forceGeneric() bool {
	return forceGenericFlag
}

package hw

import "github.com/shirou/gopsutil/v3/mem"

// MemoryInfo is a point-in-time memory snapshot in MB, the unit the
// model switcher reasons in.
type MemoryInfo struct {
	TotalMB      uint64
	AvailableMB  uint64
	FreeMB       uint64
	UsagePercent float32
}

// Memory reads the current memory state. On hosts where the source is
// unavailable it falls back to the desktop defaults (8 GiB total,
// 4 GiB available), mirroring Probe.
func Memory() MemoryInfo {
	v, err := mem.VirtualMemory()
	if err != nil || v.Total == 0 {
		return MemoryInfo{
			TotalMB:      8192,
			AvailableMB:  4096,
			FreeMB:       3072,
			UsagePercent: 50,
		}
	}
	info := MemoryInfo{
		TotalMB:     v.Total / (1 << 20),
		AvailableMB: v.Available / (1 << 20),
		FreeMB:      v.Free / (1 << 20),
	}
	info.UsagePercent = 100 * (1 - float32(v.Available)/float32(v.Total))
	return info
}

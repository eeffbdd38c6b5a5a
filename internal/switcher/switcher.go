// Package switcher selects among registered model sizes from the
// device's memory headroom, with hysteretic up/downgrade rules.
package switcher

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kipepeo-ai/KipepeoAI/internal/hw"
	"github.com/kipepeo-ai/KipepeoAI/internal/modelfile"
)

// Size is a model size class.
type Size int

const (
	Unknown Size = iota
	Model7B
	Model13B
	Model34B
	Model70B
)

func (s Size) String() string {
	switch s {
	case Model7B:
		return "7B"
	case Model13B:
		return "13B"
	case Model34B:
		return "34B"
	case Model70B:
		return "70B"
	default:
		return "Unknown"
	}
}

// Next returns the next size up. 70B is terminal.
func (s Size) Next() (Size, bool) {
	switch s {
	case Model7B:
		return Model13B, true
	case Model13B:
		return Model34B, true
	case Model34B:
		return Model70B, true
	default:
		return Unknown, false
	}
}

// ModelInfo is one registry entry.
type ModelInfo struct {
	Size          Size
	Path          string
	RequiredRAMMB uint64
	OptimalRAMMB  uint64
	Loaded        bool
}

var (
	ErrUnknownSize   = errors.New("switcher: unknown model size")
	ErrNotRegistered = errors.New("switcher: model size not registered")
)

// MemoryFunc supplies memory snapshots. Tests pin deterministic values.
type MemoryFunc func() hw.MemoryInfo

// Switcher holds the registered model table.
type Switcher struct {
	mu     sync.Mutex
	models map[Size]ModelInfo
	auto   bool
	memory MemoryFunc
}

// New returns a switcher backed by the live memory probe, with
// auto-switching enabled.
func New() *Switcher {
	return &Switcher{
		models: make(map[Size]ModelInfo),
		auto:   true,
		memory: hw.Memory,
	}
}

// SetMemoryFunc overrides the memory source.
func (s *Switcher) SetMemoryFunc(f MemoryFunc) {
	s.mu.Lock()
	s.memory = f
	s.mu.Unlock()
}

// Register adds or replaces a registry entry. When the model file
// already exists on disk its container header is checked; a file that
// is present but not a model container is rejected.
func (s *Switcher) Register(size Size, path string, requiredRAMMB, optimalRAMMB uint64) error {
	if size == Unknown {
		return ErrUnknownSize
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := modelfile.ProbeHeader(path); err != nil {
			return fmt.Errorf("register %s: %w", size, err)
		}
	}
	s.mu.Lock()
	s.models[size] = ModelInfo{
		Size:          size,
		Path:          path,
		RequiredRAMMB: requiredRAMMB,
		OptimalRAMMB:  optimalRAMMB,
	}
	s.mu.Unlock()
	return nil
}

// Model returns the registry entry for size.
func (s *Switcher) Model(size Size) (ModelInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.models[size]
	return info, ok
}

// SetLoaded flips the loaded flag for size.
func (s *Switcher) SetLoaded(size Size, loaded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.models[size]
	if !ok {
		return ErrNotRegistered
	}
	info.Loaded = loaded
	s.models[size] = info
	return nil
}

// SetAutoSwitching enables or disables automatic up/downgrades.
func (s *Switcher) SetAutoSwitching(enabled bool) {
	s.mu.Lock()
	s.auto = enabled
	s.mu.Unlock()
}

// AutoSwitching reports whether automatic switching is enabled.
func (s *Switcher) AutoSwitching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto
}

// RecommendedForRAM maps total device RAM to the recommended size:
// >=16 GiB 70B, >=12 GiB 34B, >=8 GiB 13B, else 7B.
func RecommendedForRAM(totalMB uint64) Size {
	switch {
	case totalMB >= 16384:
		return Model70B
	case totalMB >= 12288:
		return Model34B
	case totalMB >= 8192:
		return Model13B
	default:
		return Model7B
	}
}

// RecommendedModelForDevice applies RecommendedForRAM to the current
// memory snapshot.
func (s *Switcher) RecommendedModelForDevice() Size {
	return RecommendedForRAM(s.snapshot().TotalMB)
}

// SelectBestModel returns the largest registered size whose RAM
// requirement fits available minus the reserve; the smallest registered
// size when nothing fits; Unknown on an empty registry.
func (s *Switcher) SelectBestModel(minFreeMB uint64) Size {
	mem := s.snapshot()
	usable := uint64(0)
	if mem.AvailableMB > minFreeMB {
		usable = mem.AvailableMB - minFreeMB
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, size := range []Size{Model70B, Model34B, Model13B, Model7B} {
		if info, ok := s.models[size]; ok && info.RequiredRAMMB <= usable {
			return size
		}
	}
	for _, size := range []Size{Model7B, Model13B, Model34B, Model70B} {
		if _, ok := s.models[size]; ok {
			return size
		}
	}
	return Unknown
}

// ShouldDowngrade reports memory pressure: free RAM under the reserve
// or usage above 90 percent. Always false with auto-switching off.
func (s *Switcher) ShouldDowngrade(current Size, minFreeMB uint64) bool {
	if !s.AutoSwitching() {
		return false
	}
	mem := s.snapshot()
	return mem.FreeMB < minFreeMB || mem.UsagePercent > 90
}

// CanUpgrade reports whether the next size up is registered and fits
// the usable RAM. 70B is terminal, a state under downgrade pressure
// never upgrades, and auto-switching off pins the current size.
func (s *Switcher) CanUpgrade(current Size, minFreeMB uint64) bool {
	if !s.AutoSwitching() {
		return false
	}
	if s.ShouldDowngrade(current, minFreeMB) {
		return false
	}
	next, ok := current.Next()
	if !ok {
		return false
	}
	mem := s.snapshot()
	usable := uint64(0)
	if mem.AvailableMB > minFreeMB {
		usable = mem.AvailableMB - minFreeMB
	}
	info, registered := s.Model(next)
	return registered && info.RequiredRAMMB <= usable
}

// AvailableRAMGB returns the current available memory in GiB.
func (s *Switcher) AvailableRAMGB() float32 {
	return float32(s.snapshot().AvailableMB) / 1024
}

func (s *Switcher) snapshot() hw.MemoryInfo {
	s.mu.Lock()
	f := s.memory
	s.mu.Unlock()
	return f()
}

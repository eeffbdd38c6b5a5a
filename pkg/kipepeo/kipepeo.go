// Package kipepeo is the public surface of the mobile runtime core:
// chip detection, hardware probing, the AfricaQuant codec, and the
// tensor type-trait registration for a hosting LLM runtime.
package kipepeo

import (
	"github.com/kipepeo-ai/KipepeoAI/internal/chip"
	"github.com/kipepeo-ai/KipepeoAI/internal/hw"
	"github.com/kipepeo-ai/KipepeoAI/internal/quant"
)

// Chip re-exports the detected SoC identity.
type Chip = chip.Type

// DetectChip identifies the SoC, cached process-wide.
func DetectChip() Chip { return chip.Detect() }

// ChipName returns the human-readable chip name.
func ChipName(c Chip) string { return c.String() }

// Capabilities re-exports the probed hardware picture.
type Capabilities = hw.Capabilities

// ProbeHardware reads memory, cache and core resources and derives the
// quantizer recommendations.
func ProbeHardware() Capabilities { return hw.Probe() }

// Quantizer re-exports the AfricaQuant codec instance type. Instances
// are independent; construct one per thread to bypass the internal
// serialization.
type Quantizer = quant.Quantizer

// NewQuantizer builds a codec instance tuned for the probed hardware.
func NewQuantizer() *Quantizer { return quant.New() }

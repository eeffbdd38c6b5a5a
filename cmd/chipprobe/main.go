// chipprobe prints the detected chip identity, kernel tuning hints and
// the hardware probe output.
package main

import (
	"fmt"

	"github.com/kipepeo-ai/KipepeoAI/internal/chip"
	"github.com/kipepeo-ai/KipepeoAI/internal/hw"
	"github.com/kipepeo-ai/KipepeoAI/internal/switcher"
)

func main() {
	c := chip.Detect()
	fmt.Printf("chip: %s\n", c)
	fmt.Printf("fp16: %v (host flags: neon=%v fp16=%v)\n", c.SupportsFP16(), chip.HasNEON(), chip.HasFP16())
	mr, nr := c.TileF32(true)
	lmr, lnr := c.TileF32(false)
	fmt.Printf("f32 tile: big %dx%d, little %dx%d\n", mr, nr, lmr, lnr)
	if fmr, fnr := c.TileF16(); fmr > 0 {
		fmt.Printf("f16 tile: %dx%d\n", fmr, fnr)
	}

	caps := hw.Probe()
	fmt.Printf("cpu: %s (%d cores)\n", caps.CPUModel, caps.CPUCores)
	fmt.Printf("memory: %d MB total, %d MB available\n",
		caps.TotalMemory>>20, caps.AvailableMemory>>20)
	fmt.Printf("recommend: block=%d threshold=%.2f pool=%v concurrent=%d\n",
		caps.OptimalBlockSize, caps.OptimalTernaryThreshold,
		caps.UseMemoryPool, caps.MaxConcurrentOps)

	mem := hw.Memory()
	fmt.Printf("model for device: %s (total %d MB)\n",
		switcher.RecommendedForRAM(mem.TotalMB), mem.TotalMB)
}

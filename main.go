package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gbacore/internal/bus"
	"gbacore/internal/cpu"
	"gbacore/internal/mmu"
	"gbacore/statsview"
)

// Crude scanline clock for the headless runner: one scanline per fixed
// instruction count, 228 lines per frame. Good enough to make DISPSTAT and
// VCOUNT move for code that polls them.
const (
	stepsPerLine   = 308
	linesPerFrame  = 228
	hblankFraction = 240.0 / 308.0
)

func main() {
	biosPath := flag.String("bios", "", "Path to BIOS image (optional)")
	romPath := flag.String("rom", "", "Path to ROM file")
	steps := flag.Int("steps", 1_000_000, "Number of instructions to execute")
	startPC := flag.Uint64("pc", 0, "Initial program counter")
	stats := flag.Bool("statsview", false, "Launch the runtime statistics server")
	flag.Parse()

	if *stats {
		if !statsview.Available() {
			log.Fatal("statsview not compiled in (build with -tags statsview)")
		}
		statsview.Launch(os.Stdout)
	}

	m := mmu.NewMMU()
	b := bus.NewBus(m)

	if *biosPath != "" {
		if err := b.LoadBIOS(*biosPath); err != nil {
			log.Fatal(err)
		}
	}
	if *romPath != "" {
		if err := b.LoadGamePak(*romPath); err != nil {
			log.Fatal(err)
		}
	}

	c := cpu.NewCPU(b)
	c.Reset()
	c.SetPC(uint32(*startPC))

	line := 0
	for i := 0; i < *steps; i++ {
		c.Step()

		inLine := i % stepsPerLine
		if inLine == 0 {
			b.SetHBlank(false)
			b.SetVCount(uint16(line))
		} else if inLine == int(float64(stepsPerLine)*hblankFraction) {
			b.SetHBlank(true)
		}
		if inLine == stepsPerLine-1 {
			line = (line + 1) % linesPerFrame
		}
	}

	fmt.Println(c)
}

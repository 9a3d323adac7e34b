// Package main provides the entry point for VulcanSim.
// VulcanSim simulates the memory system of a single-core board: the core's
// traffic flows through optional L1 caches and a system crossbar to DRAM,
// with an error responder catching unmapped addresses.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/board"
	"github.com/sarchlab/vulcansim/board/simboard"
	"github.com/sarchlab/vulcansim/timing/agentcore"
	"github.com/sarchlab/vulcansim/timing/hierarchy"
	"github.com/sarchlab/vulcansim/timing/params"
)

var (
	configPath = flag.String("config", "", "Path to configuration JSON file")
	accesses   = flag.Int("accesses", 1000,
		"Number of fetches, reads, and writes the core issues, each")
	isaFlag = flag.String("isa", "",
		"Override the configured ISA (x86, arm, riscv)")
	coherentIO = flag.Bool("coherent-io", false,
		"Attach an IO-coherent path to the crossbar")
	verbose = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	config := params.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = params.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if *isaFlag != "" {
		config.ISA = *isaFlag
	}
	if *coherentIO {
		config.CoherentIO = true
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
		os.Exit(1)
	}
}

func run(config *params.Config) error {
	engine := sim.NewSerialEngine()
	freq := sim.Freq(config.FreqGHz) * sim.GHz

	isa, err := board.ParseISA(config.ISA)
	if err != nil {
		return err
	}

	boardBuilder := simboard.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithISA(isa).
		WithMemorySize(config.MemorySizeBytes).
		WithMemoryLatency(config.MemoryLatency).
		WithAccessCount(*accesses)
	if config.CoherentIO {
		boardBuilder = boardBuilder.WithCoherentIO()
	}
	brd := boardBuilder.Build("Board")

	hierarchyBuilder := hierarchy.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithXBarWidth(config.XBarWidthBytes)
	if config.ICache.Enabled {
		hierarchyBuilder = hierarchyBuilder.WithICache(config.ICache.Spec())
	}
	if config.DCache.Enabled {
		hierarchyBuilder = hierarchyBuilder.WithDCache(config.DCache.Spec())
	}
	h := hierarchyBuilder.Build("MemSystem")

	h.IncorporateCache(brd)

	core := brd.Core()
	core.TickLater()

	if err := engine.Run(); err != nil {
		return fmt.Errorf("engine failed: %w", err)
	}

	report(config, h, core, engine)

	return nil
}

func report(
	config *params.Config,
	h *hierarchy.Hierarchy,
	core *agentcore.Comp,
	engine sim.Engine,
) {
	fmt.Printf("Simulated time: %.9fs\n", float64(engine.CurrentTime()))
	fmt.Printf("Verified reads: %d\n", core.VerifiedReads())
	fmt.Printf("Mismatches: %d\n", core.Mismatches())
	fmt.Printf("Unmapped accesses: %d\n", h.ErrorResponder().BadAccessCount)

	if !core.Done() {
		fmt.Println("Warning: simulation drained before all accesses finished")
	}

	if *verbose {
		fmt.Printf("\nTopology:\n")
		fmt.Printf("  ISA: %s\n", config.ISA)
		fmt.Printf("  ICache: %v\n", h.ICache() != nil)
		fmt.Printf("  DCache: %v\n", h.DCache() != nil)
		fmt.Printf("  Interrupts over fabric: %v\n", core.InterruptWired())
		fmt.Printf("  IO-coherent path: %v\n", h.IOCoherentPathAttached())
		for _, ch := range h.Interconnect().Channels() {
			fmt.Printf("  Channel %s: [0x%X, 0x%X)\n",
				ch.Label, ch.Range.Base, ch.Range.End())
		}
	}
}

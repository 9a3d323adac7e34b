// Package simboard provides a reference board: one traffic-generating core
// and a single DRAM channel backed by an ideal memory controller. It is the
// board the command-line simulator runs and the one the topology tests wire.
package simboard

import (
	"github.com/sarchlab/akita/v4/mem/idealmemcontroller"
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/board"
	"github.com/sarchlab/vulcansim/timing/agentcore"
	"github.com/sarchlab/vulcansim/timing/xbar"
)

// Board is the reference single-core board.
type Board struct {
	name string
	isa  board.ISA

	core *agentcore.Comp
	dram *idealmemcontroller.Comp

	memSize    uint64
	coherentIO bool

	systemPort sim.Port
	ioEndpoint sim.Port
}

type processor struct {
	core *agentcore.Comp
	isa  board.ISA
}

func (p processor) NumCores() int       { return 1 }
func (p processor) Cores() []board.Core { return []board.Core{p.core} }
func (p processor) ISA() board.ISA      { return p.isa }

// Processor returns the board's single-core processor.
func (b *Board) Processor() board.Processor {
	return processor{core: b.core, isa: b.isa}
}

// MemChannels returns the board's one DRAM channel, covering the whole
// address space of the board.
func (b *Board) MemChannels() []board.MemChannel {
	return []board.MemChannel{{
		Name:  "DRAM",
		Range: xbar.AddressRange{Base: 0, Size: b.memSize},
		Port:  b.dram.GetPortByName("Top"),
	}}
}

// HasCoherentIO reports whether the board requests an IO-coherent path.
func (b *Board) HasCoherentIO() bool {
	return b.coherentIO
}

// ConnectSystemPort records the endpoint of the functional-access path.
func (b *Board) ConnectSystemPort(endpoint sim.Port) {
	b.systemPort = endpoint
}

// ConnectCoherentIO records the crossbar endpoint of the IO-coherent path.
func (b *Board) ConnectCoherentIO(endpoint sim.Port) {
	b.ioEndpoint = endpoint
}

// SystemPort returns the recorded functional-access endpoint, or nil before
// the board is incorporated.
func (b *Board) SystemPort() sim.Port {
	return b.systemPort
}

// IOEndpoint returns the recorded IO-coherent endpoint, or nil when the
// board has none.
func (b *Board) IOEndpoint() sim.Port {
	return b.ioEndpoint
}

// Core returns the board's traffic-generating core.
func (b *Board) Core() *agentcore.Comp {
	return b.core
}

// DRAM returns the board's memory controller.
func (b *Board) DRAM() *idealmemcontroller.Comp {
	return b.dram
}

// Builder can build reference boards.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	isa         board.ISA
	memSize     uint64
	memLatency  int
	accessCount int
	coherentIO  bool
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		isa:         board.ISAX86,
		memSize:     1 * mem.MB,
		memLatency:  100,
		accessCount: 1000,
	}
}

// WithEngine sets the event engine every component of the board uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the board's components work at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithISA sets the processor's instruction set architecture.
func (b Builder) WithISA(isa board.ISA) Builder {
	b.isa = isa
	return b
}

// WithMemorySize sets the DRAM capacity in bytes.
func (b Builder) WithMemorySize(size uint64) Builder {
	b.memSize = size
	return b
}

// WithMemoryLatency sets the DRAM access latency in cycles.
func (b Builder) WithMemoryLatency(cycles int) Builder {
	b.memLatency = cycles
	return b
}

// WithAccessCount sets the number of accesses the core issues per kind.
func (b Builder) WithAccessCount(n int) Builder {
	b.accessCount = n
	return b
}

// WithCoherentIO makes the board request an IO-coherent path.
func (b Builder) WithCoherentIO() Builder {
	b.coherentIO = true
	return b
}

// Build builds a reference board.
func (b Builder) Build(name string) *Board {
	if b.engine == nil {
		panic("board requires an engine")
	}

	brd := &Board{
		name:       name,
		isa:        b.isa,
		memSize:    b.memSize,
		coherentIO: b.coherentIO,
	}

	brd.core = agentcore.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithMaxAddress(b.memSize).
		WithAccessCount(b.accessCount).
		Build(name + ".Core")

	brd.dram = idealmemcontroller.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithNewStorage(b.memSize).
		WithLatency(b.memLatency).
		Build(name + ".DRAM")

	return brd
}

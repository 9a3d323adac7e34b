// Package board defines the capability surface the topology builder
// consumes from a board: core enumeration, memory channels, the coherent-IO
// flag, and the connection hooks for the system path, the caches, and the
// interrupt ports. Boards implement these interfaces; test doubles can
// substitute synthetic boards without a full simulation environment.
package board

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/timing/xbar"
)

// A Core is the instruction-execution unit issuing memory and interrupt
// requests. The Connect methods tell the core which endpoint its traffic
// must target; the Port accessors expose the core's own connection points
// so the hierarchy can wire them.
type Core interface {
	// ConnectICache tells the core where to send instruction fetches.
	ConnectICache(endpoint sim.Port)
	// ConnectDCache tells the core where to send data accesses.
	ConnectDCache(endpoint sim.Port)
	// ConnectInterrupt wires the core's interrupt request and response
	// paths. Both endpoints are nil when interrupt delivery is
	// self-contained in the core.
	ConnectInterrupt(req, resp sim.Port)

	// ICachePort returns the core's instruction-fetch connection point.
	ICachePort() sim.Port
	// DCachePort returns the core's data-access connection point.
	DCachePort() sim.Port
}

// A Processor enumerates the cores of a board.
type Processor interface {
	NumCores() int
	Cores() []Core
	ISA() ISA
}

// A MemChannel describes one memory channel of a board: its name, the
// address range it serves, and its connection point.
type MemChannel struct {
	Name  string
	Range xbar.AddressRange
	Port  sim.Port
}

// A Board supplies the components the topology builder wires together.
type Board interface {
	Processor() Processor
	MemChannels() []MemChannel
	HasCoherentIO() bool

	// ConnectSystemPort registers the endpoint of the system-level
	// functional-access path, used for non-timed whole-system operations
	// such as loading a workload image.
	ConnectSystemPort(endpoint sim.Port)

	// ConnectCoherentIO attaches the board's IO-coherent path to the
	// given crossbar endpoint. Only called when HasCoherentIO is true.
	ConnectCoherentIO(endpoint sim.Port)
}

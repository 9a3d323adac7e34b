package xbar

import (
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can build crossbars.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	widthBytes int
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		widthBytes: 64,
	}
}

// WithEngine sets the event engine the crossbar uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the crossbar works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWidthBytes sets the number of payload bytes the crossbar can move
// per cycle.
func (b Builder) WithWidthBytes(widthBytes int) Builder {
	b.widthBytes = widthBytes
	return b
}

// Build builds a crossbar.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("crossbar requires an engine")
	}
	if b.widthBytes <= 0 {
		panic("crossbar width must be positive")
	}

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.widthBytes = b.widthBytes
	c.table = new(RangedPortMapper)
	c.byDst = make(map[sim.RemotePort]*Channel)
	c.inflight = make(map[string]*transaction)

	c.cpuSidePort = sim.NewPort(c, 4, 4, name+".CPUSide")
	c.AddPort("CPUSide", c.cpuSidePort)
	c.upstreams = append(c.upstreams, c.cpuSidePort)

	c.memSidePort = sim.NewPort(c, 4, 4, name+".MemSide")
	c.AddPort("MemSide", c.memSidePort)

	return c
}

// PortMapper returns the crossbar's routing table.
func (c *Comp) PortMapper() mem.AddressToPortMapper {
	return c.table
}

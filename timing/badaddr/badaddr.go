// Package badaddr provides the error responder that answers accesses to
// addresses outside every mapped memory range. Instead of stalling or
// crashing the simulation, it synthesizes a fixed response for every
// request, so a misconfigured or out-of-range access always makes forward
// progress.
package badaddr

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// Comp is the error responder component.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	// BadAccessCount is the number of unmapped accesses answered so far.
	BadAccessCount uint64
}

// TopPort returns the port the crossbar's default route connects to.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// Tick answers pending requests. Reads get a zero-filled data response,
// writes get a write-done response.
func (c *Comp) Tick() bool {
	madeProgress := false

	for {
		item := c.topPort.PeekIncoming()
		if item == nil {
			break
		}

		rsp := c.respond(item)
		if err := c.topPort.Send(rsp); err != nil {
			break
		}

		c.topPort.RetrieveIncoming()
		c.BadAccessCount++
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) respond(item sim.Msg) sim.Msg {
	switch req := item.(type) {
	case *mem.ReadReq:
		return mem.DataReadyRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			WithData(make([]byte, req.AccessByteSize)).
			Build()
	case *mem.WriteReq:
		return mem.WriteDoneRspBuilder{}.
			WithSrc(c.topPort.AsRemote()).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
	default:
		panic(fmt.Sprintf("%s cannot answer message of type %s",
			c.Name(), reflect.TypeOf(item)))
	}
}

// Builder can build error responders.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the event engine the responder uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the responder works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build builds an error responder.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("error responder requires an engine")
	}

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.topPort = sim.NewPort(c, 4, 4, name+".Top")
	c.AddPort("Top", c.topPort)

	return c
}

// Package xbar provides the system crossbar that fans in traffic from the
// caches and the core and routes it to memory channels by address range.
// Addresses outside every mapped range are forwarded to the default route
// instead of being dropped.
package xbar

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// A Channel is one downstream memory destination attached to the crossbar.
type Channel struct {
	Label string
	Range AddressRange

	port sim.Port
	dst  sim.RemotePort
}

// Port returns the crossbar-side port of the channel.
func (c *Channel) Port() sim.Port {
	return c.port
}

type transaction struct {
	req  mem.AccessReq
	from sim.Port
}

// Comp is the crossbar component. Upstream slots accept requests from the
// caches and the core; downstream slots issue them to memory channels.
type Comp struct {
	*sim.TickingComponent

	widthBytes int

	cpuSidePort sim.Port
	memSidePort sim.Port

	upstreams []sim.Port
	channels  []*Channel
	defaultCh *Channel
	byDst     map[sim.RemotePort]*Channel
	table     *RangedPortMapper

	inflight     map[string]*transaction
	nextUpstream int
}

// WidthBytes returns the number of payload bytes the crossbar moves per
// cycle.
func (c *Comp) WidthBytes() int {
	return c.widthBytes
}

// CPUSidePort returns the upstream aggregate connection point. It serves
// the system-level functional-access path and also participates in request
// routing like any other upstream slot.
func (c *Comp) CPUSidePort() sim.Port {
	return c.cpuSidePort
}

// MemSidePort returns the downstream aggregate connection point.
func (c *Comp) MemSidePort() sim.Port {
	return c.memSidePort
}

// AttachUpstream creates a new upstream slot for an incoming requester and
// returns it. The caller routes its traffic to the returned port and is
// responsible for connecting its own port to it.
func (c *Comp) AttachUpstream(label string) sim.Port {
	name := fmt.Sprintf("%s.CPUSide.%s", c.Name(), label)
	port := sim.NewPort(c, 4, 4, name)
	c.AddPort("CPUSide."+label, port)
	c.upstreams = append(c.upstreams, port)

	return port
}

// AttachDownstream registers a memory channel covering the given address
// range and returns the crossbar-side port the caller must connect the
// channel's endpoint to.
func (c *Comp) AttachDownstream(
	label string,
	rng AddressRange,
	endpoint sim.Port,
) sim.Port {
	ch := c.newChannel(label, rng, endpoint)
	c.table.AddRange(rng, ch.dst)
	c.channels = append(c.channels, ch)

	return ch.port
}

// RouteDefaultTo installs the catch-all destination for addresses outside
// every mapped range, typically an error responder. It must be installed
// before the crossbar carries traffic and may only be installed once.
func (c *Comp) RouteDefaultTo(endpoint sim.Port) sim.Port {
	ch := c.newChannel("Default", AddressRange{}, endpoint)
	c.table.SetDefault(ch.dst)
	c.defaultCh = ch

	return ch.port
}

// Channels returns the attached downstream channels. The default route is
// not part of the set.
func (c *Comp) Channels() []Channel {
	channels := make([]Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		channels = append(channels, *ch)
	}

	return channels
}

func (c *Comp) newChannel(
	label string,
	rng AddressRange,
	endpoint sim.Port,
) *Channel {
	ch := &Channel{
		Label: label,
		Range: rng,
		dst:   endpoint.AsRemote(),
	}
	ch.port = sim.NewPort(c, 4, 4,
		fmt.Sprintf("%s.MemSide.%s", c.Name(), label))
	c.AddPort("MemSide."+label, ch.port)
	c.byDst[ch.dst] = ch

	return ch
}

// Tick forwards requests downstream and responses back upstream, bounded
// by the crossbar width per cycle.
func (c *Comp) Tick() bool {
	madeProgress := false
	budget := c.widthBytes

	for i := 0; i < len(c.upstreams); i++ {
		slot := c.upstreams[(i+c.nextUpstream)%len(c.upstreams)]
		madeProgress = c.forwardRequests(slot, &budget) || madeProgress
	}
	c.nextUpstream = (c.nextUpstream + 1) % len(c.upstreams)

	for _, ch := range c.channels {
		madeProgress = c.returnResponses(ch, &budget) || madeProgress
	}
	if c.defaultCh != nil {
		madeProgress = c.returnResponses(c.defaultCh, &budget) || madeProgress
	}

	return madeProgress
}

func (c *Comp) forwardRequests(slot sim.Port, budget *int) bool {
	madeProgress := false

	for *budget > 0 {
		item := slot.PeekIncoming()
		if item == nil {
			break
		}

		req, ok := item.(mem.AccessReq)
		if !ok {
			panic(fmt.Sprintf("%s cannot route message of type %s",
				c.Name(), reflect.TypeOf(item)))
		}

		ch := c.channelFor(req.GetAddress())
		fwd := c.rebuildReq(req, ch)

		if err := ch.port.Send(fwd); err != nil {
			break
		}

		c.inflight[fwd.Meta().ID] = &transaction{req: req, from: slot}
		slot.RetrieveIncoming()
		*budget -= req.Meta().TrafficBytes
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) returnResponses(ch *Channel, budget *int) bool {
	madeProgress := false

	for *budget > 0 {
		item := ch.port.PeekIncoming()
		if item == nil {
			break
		}

		rsp, ok := item.(mem.AccessRsp)
		if !ok {
			panic(fmt.Sprintf("%s cannot route message of type %s",
				c.Name(), reflect.TypeOf(item)))
		}

		trans, found := c.inflight[rsp.GetRspTo()]
		if !found {
			panic(c.Name() + ": response to unknown transaction " +
				rsp.GetRspTo())
		}

		up := c.rebuildRsp(rsp, trans)
		if err := trans.from.Send(up); err != nil {
			break
		}

		delete(c.inflight, rsp.GetRspTo())
		ch.port.RetrieveIncoming()
		*budget -= rsp.Meta().TrafficBytes
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) channelFor(addr uint64) *Channel {
	return c.byDst[c.table.Find(addr)]
}

func (c *Comp) rebuildReq(req mem.AccessReq, ch *Channel) mem.AccessReq {
	switch req := req.(type) {
	case *mem.ReadReq:
		return mem.ReadReqBuilder{}.
			WithSrc(ch.port.AsRemote()).
			WithDst(ch.dst).
			WithAddress(req.Address).
			WithByteSize(req.AccessByteSize).
			WithPID(req.PID).
			Build()
	case *mem.WriteReq:
		return mem.WriteReqBuilder{}.
			WithSrc(ch.port.AsRemote()).
			WithDst(ch.dst).
			WithAddress(req.Address).
			WithData(req.Data).
			WithDirtyMask(req.DirtyMask).
			WithPID(req.PID).
			Build()
	default:
		panic(fmt.Sprintf("%s cannot route request of type %s",
			c.Name(), reflect.TypeOf(req)))
	}
}

func (c *Comp) rebuildRsp(rsp mem.AccessRsp, trans *transaction) sim.Msg {
	switch rsp := rsp.(type) {
	case *mem.DataReadyRsp:
		return mem.DataReadyRspBuilder{}.
			WithSrc(trans.from.AsRemote()).
			WithDst(trans.req.Meta().Src).
			WithRspTo(trans.req.Meta().ID).
			WithData(rsp.Data).
			Build()
	case *mem.WriteDoneRsp:
		return mem.WriteDoneRspBuilder{}.
			WithSrc(trans.from.AsRemote()).
			WithDst(trans.req.Meta().Src).
			WithRspTo(trans.req.Meta().ID).
			Build()
	default:
		panic(fmt.Sprintf("%s cannot route response of type %s",
			c.Name(), reflect.TypeOf(rsp)))
	}
}

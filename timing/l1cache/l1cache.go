// Package l1cache provides the L1 cache model of the memory hierarchy.
//
// The model declares the cache's timing and capacity parameters and exposes
// its two connection points: a core side bound to exactly one requester
// role, and a memory side bound to the system crossbar. The cache carries
// traffic through an MSHR-bounded miss-forwarding conduit; hit/miss content
// simulation belongs to the execution engine, not to this model.
package l1cache

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// A Spec holds the timing and capacity parameters of one cache.
type Spec struct {
	// WayAssociativity is the number of ways per set.
	WayAssociativity int
	// TagLatency is the tag-lookup latency in cycles.
	TagLatency int
	// DataLatency is the data-access latency in cycles.
	DataLatency int
	// ResponseLatency is the latency of returning a response in cycles.
	ResponseLatency int
	// NumMSHR is the number of outstanding misses the cache can track.
	NumMSHR int
	// TargetsPerMSHR is the number of secondary requests that can merge
	// into one outstanding miss.
	TargetsPerMSHR int
	// ByteSize is the cache capacity in bytes.
	ByteSize uint64
	// BlockSize is the cache line size in bytes.
	BlockSize int
}

// DefaultSpec returns the parameters of a small direct-mapped L1 cache.
func DefaultSpec() Spec {
	return Spec{
		WayAssociativity: 1,
		TagLatency:       2,
		DataLatency:      2,
		ResponseLatency:  2,
		NumMSHR:          4,
		TargetsPerMSHR:   20,
		ByteSize:         16 * mem.KB,
		BlockSize:        64,
	}
}

type mshrEntry struct {
	blockAddr  uint64
	isWrite    bool
	unaligned  bool
	targets    []mem.AccessReq
	cyclesLeft int
	issued     bool
	fetchID    string
}

type pendingRsp struct {
	msg        sim.Msg
	cyclesLeft int
}

// Comp is the cache model component.
type Comp struct {
	*sim.TickingComponent

	spec Spec
	role Role

	topPort    sim.Port
	bottomPort sim.Port

	coreSideBound bool
	memSideBound  bool
	lowModule     sim.RemotePort

	entries []*mshrEntry
	rsps    []*pendingRsp
}

// Spec returns the cache's declared parameters.
func (c *Comp) Spec() Spec {
	return c.spec
}

// Role returns the requester role this cache serves.
func (c *Comp) Role() Role {
	return c.role
}

// CoreSidePort returns the connection point that accepts requests from the
// core.
func (c *Comp) CoreSidePort() sim.Port {
	return c.topPort
}

// MemSidePort returns the connection point that issues requests toward the
// crossbar.
func (c *Comp) MemSidePort() sim.Port {
	return c.bottomPort
}

// CoreSideBound reports whether the core side has been bound.
func (c *Comp) CoreSideBound() bool {
	return c.coreSideBound
}

// MemSideBound reports whether the memory side has been bound.
func (c *Comp) MemSideBound() bool {
	return c.memSideBound
}

// LowModule returns the port the cache issues misses to.
func (c *Comp) LowModule() sim.RemotePort {
	return c.lowModule
}

// BindCoreSide attaches the cache's core-facing connection point to the
// given requester role's port. A cache serves exactly one role and may be
// bound at most once. The endpoint is contract-checked, not retained:
// traffic reaches the cache through the connection wired to CoreSidePort,
// and responses go to each request's source port.
func (c *Comp) BindCoreSide(role Role, endpoint sim.Port) {
	if role != c.role {
		panic(fmt.Sprintf("%s serves %s requests, cannot bind %s port",
			c.Name(), c.role, role))
	}
	if c.coreSideBound {
		panic(c.Name() + ": core side already bound")
	}
	if endpoint == nil {
		panic(c.Name() + ": core side endpoint is nil")
	}

	c.coreSideBound = true
}

// BindMemSide attaches the cache's memory-facing connection point to a
// crossbar upstream slot. It may be called at most once.
func (c *Comp) BindMemSide(endpoint sim.Port) {
	if c.memSideBound {
		panic(c.Name() + ": memory side already bound")
	}
	if endpoint == nil {
		panic(c.Name() + ": memory side endpoint is nil")
	}

	c.memSideBound = true
	c.lowModule = endpoint.AsRemote()
}

// Tick moves requests through the cache's miss-handling pipeline.
func (c *Comp) Tick() bool {
	madeProgress := c.sendReadyResponses()
	madeProgress = c.countDown() || madeProgress
	madeProgress = c.collectRefills() || madeProgress
	madeProgress = c.issueFetches() || madeProgress
	madeProgress = c.acceptRequests() || madeProgress

	return madeProgress
}

func (c *Comp) acceptRequests() bool {
	madeProgress := false

	for {
		item := c.topPort.PeekIncoming()
		if item == nil {
			break
		}

		req, ok := item.(mem.AccessReq)
		if !ok {
			panic(fmt.Sprintf("%s cannot serve message of type %s",
				c.Name(), reflect.TypeOf(item)))
		}

		if !c.memSideBound {
			panic(c.Name() + ": memory side is not bound")
		}

		if !c.admit(req) {
			break
		}

		c.topPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

// admit places a request into an MSHR. Reads to a line that already has an
// outstanding miss merge into it as secondary targets. A read whose byte
// window crosses a line boundary gets its own entry and is fetched with its
// exact window, since a single-line refill cannot cover it.
func (c *Comp) admit(req mem.AccessReq) bool {
	read, isRead := req.(*mem.ReadReq)

	if isRead && !c.crossesLine(read) {
		entry := c.findReadEntry(c.blockAddr(read.Address))
		if entry != nil {
			if len(entry.targets) >= c.spec.TargetsPerMSHR {
				return false
			}

			entry.targets = append(entry.targets, req)

			return true
		}
	}

	if len(c.entries) >= c.spec.NumMSHR {
		return false
	}

	entry := &mshrEntry{
		blockAddr:  c.blockAddr(req.GetAddress()),
		isWrite:    !isRead,
		unaligned:  isRead && c.crossesLine(read),
		targets:    []mem.AccessReq{req},
		cyclesLeft: c.spec.TagLatency + c.spec.DataLatency,
	}
	c.entries = append(c.entries, entry)

	return true
}

func (c *Comp) crossesLine(read *mem.ReadReq) bool {
	if read.AccessByteSize == 0 {
		return false
	}

	last := read.Address + read.AccessByteSize - 1

	return c.blockAddr(read.Address) != c.blockAddr(last)
}

func (c *Comp) countDown() bool {
	madeProgress := false

	for _, entry := range c.entries {
		if !entry.issued && entry.cyclesLeft > 0 {
			entry.cyclesLeft--
			madeProgress = true
		}
	}

	for _, rsp := range c.rsps {
		if rsp.cyclesLeft > 0 {
			rsp.cyclesLeft--
			madeProgress = true
		}
	}

	return madeProgress
}

func (c *Comp) issueFetches() bool {
	madeProgress := false

	for _, entry := range c.entries {
		if entry.issued || entry.cyclesLeft > 0 {
			continue
		}

		fetch := c.buildFetch(entry)
		if err := c.bottomPort.Send(fetch); err != nil {
			break
		}

		entry.issued = true
		entry.fetchID = fetch.Meta().ID
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) buildFetch(entry *mshrEntry) mem.AccessReq {
	if entry.isWrite {
		write := entry.targets[0].(*mem.WriteReq)

		return mem.WriteReqBuilder{}.
			WithSrc(c.bottomPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(write.Address).
			WithData(write.Data).
			WithDirtyMask(write.DirtyMask).
			WithPID(write.PID).
			Build()
	}

	if entry.unaligned {
		read := entry.targets[0].(*mem.ReadReq)

		return mem.ReadReqBuilder{}.
			WithSrc(c.bottomPort.AsRemote()).
			WithDst(c.lowModule).
			WithAddress(read.Address).
			WithByteSize(read.AccessByteSize).
			WithPID(read.PID).
			Build()
	}

	// Misses refill the whole line so merged targets can all be served.
	return mem.ReadReqBuilder{}.
		WithSrc(c.bottomPort.AsRemote()).
		WithDst(c.lowModule).
		WithAddress(entry.blockAddr).
		WithByteSize(uint64(c.spec.BlockSize)).
		WithPID(entry.targets[0].GetPID()).
		Build()
}

func (c *Comp) collectRefills() bool {
	madeProgress := false

	for {
		item := c.bottomPort.PeekIncoming()
		if item == nil {
			break
		}

		rsp, ok := item.(mem.AccessRsp)
		if !ok {
			panic(fmt.Sprintf("%s cannot serve message of type %s",
				c.Name(), reflect.TypeOf(item)))
		}

		entry := c.takeEntry(rsp.GetRspTo())
		c.respondToTargets(entry, rsp)

		c.bottomPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) respondToTargets(entry *mshrEntry, rsp mem.AccessRsp) {
	for _, target := range entry.targets {
		var msg sim.Msg

		switch target := target.(type) {
		case *mem.ReadReq:
			dataReady := rsp.(*mem.DataReadyRsp)
			data := dataReady.Data
			if !entry.unaligned {
				offset := target.Address - entry.blockAddr
				data = data[offset : offset+target.AccessByteSize]
			}
			msg = mem.DataReadyRspBuilder{}.
				WithSrc(c.topPort.AsRemote()).
				WithDst(target.Src).
				WithRspTo(target.ID).
				WithData(data).
				Build()
		case *mem.WriteReq:
			msg = mem.WriteDoneRspBuilder{}.
				WithSrc(c.topPort.AsRemote()).
				WithDst(target.Src).
				WithRspTo(target.ID).
				Build()
		}

		c.rsps = append(c.rsps, &pendingRsp{
			msg:        msg,
			cyclesLeft: c.spec.ResponseLatency,
		})
	}
}

func (c *Comp) sendReadyResponses() bool {
	madeProgress := false

	for len(c.rsps) > 0 {
		rsp := c.rsps[0]
		if rsp.cyclesLeft > 0 {
			break
		}

		if err := c.topPort.Send(rsp.msg); err != nil {
			break
		}

		c.rsps = c.rsps[1:]
		madeProgress = true
	}

	return madeProgress
}

// findReadEntry returns the mergeable outstanding miss for a line.
// Unaligned entries fetch a window narrower than the line, so nothing can
// merge into them.
func (c *Comp) findReadEntry(blockAddr uint64) *mshrEntry {
	for _, entry := range c.entries {
		if !entry.isWrite && !entry.unaligned && entry.blockAddr == blockAddr {
			return entry
		}
	}

	return nil
}

func (c *Comp) takeEntry(fetchID string) *mshrEntry {
	for i, entry := range c.entries {
		if entry.issued && entry.fetchID == fetchID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return entry
		}
	}

	panic(c.Name() + ": refill for unknown miss " + fetchID)
}

func (c *Comp) blockAddr(addr uint64) uint64 {
	return addr / uint64(c.spec.BlockSize) * uint64(c.spec.BlockSize)
}

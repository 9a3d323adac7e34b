// Package hierarchy composes the memory system of a single-core board: the
// system crossbar, an error responder for unmapped addresses, optional
// private L1 caches per requester role, the board's memory channels, and
// ISA-dependent interrupt routing.
package hierarchy

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/vulcansim/board"
	"github.com/sarchlab/vulcansim/timing/badaddr"
	"github.com/sarchlab/vulcansim/timing/l1cache"
	"github.com/sarchlab/vulcansim/timing/xbar"
)

// A Hierarchy is the composed memory system. Build creates the crossbar and
// the error responder; IncorporateCache wires a board into them.
type Hierarchy struct {
	name   string
	engine sim.Engine
	freq   sim.Freq

	icachePlan CachePlan
	dcachePlan CachePlan

	xbar    *xbar.Comp
	badAddr *badaddr.Comp
	icache  *l1cache.Comp
	dcache  *l1cache.Comp

	memChannel     board.MemChannel
	built          bool
	ioPathAttached bool
}

// Interconnect returns the system crossbar.
func (h *Hierarchy) Interconnect() *xbar.Comp {
	return h.xbar
}

// ErrorResponder returns the component answering unmapped accesses.
func (h *Hierarchy) ErrorResponder() *badaddr.Comp {
	return h.badAddr
}

// ICache returns the instruction cache, or nil when the instruction path
// has no cache.
func (h *Hierarchy) ICache() *l1cache.Comp {
	return h.icache
}

// DCache returns the data cache, or nil when the data path has no cache.
func (h *Hierarchy) DCache() *l1cache.Comp {
	return h.dcache
}

// CPUSidePort returns the crossbar's upstream aggregate connection point.
func (h *Hierarchy) CPUSidePort() sim.Port {
	return h.xbar.CPUSidePort()
}

// MemSidePort returns the crossbar's downstream aggregate connection point.
func (h *Hierarchy) MemSidePort() sim.Port {
	return h.xbar.MemSidePort()
}

// MemChannel returns the memory channel the hierarchy routes to. With
// multiple channels attached, it reports the last one wired.
func (h *Hierarchy) MemChannel() board.MemChannel {
	return h.memChannel
}

// Built reports whether a board has been incorporated.
func (h *Hierarchy) Built() bool {
	return h.built
}

// IOCoherentPathAttached reports whether the board's IO-coherent path was
// wired to the crossbar.
func (h *Hierarchy) IOCoherentPathAttached() bool {
	return h.ioPathAttached
}

// IncorporateCache wires the given board into the hierarchy: system port,
// memory channels, per-role cache or direct paths, the IO-coherent path,
// and the interrupt route the board's ISA requires. It may run only once
// per hierarchy and only accepts single-core boards.
func (h *Hierarchy) IncorporateCache(b board.Board) {
	if h.built {
		panic(h.name + ": board already incorporated")
	}

	h.validate(b)

	b.ConnectSystemPort(h.xbar.CPUSidePort())

	for _, ch := range b.MemChannels() {
		h.wireMemChannel(ch)
	}

	core := b.Processor().Cores()[0]
	h.icache = h.wireRole(core, l1cache.RoleInstruction, h.icachePlan)
	h.dcache = h.wireRole(core, l1cache.RoleData, h.dcachePlan)

	h.setupCoherentIO(b)
	h.wireInterrupts(b, core)

	h.mustBeFullyBound()
	h.built = true
}

func (h *Hierarchy) validate(b board.Board) {
	if b == nil {
		panic(h.name + ": board is nil")
	}

	proc := b.Processor()
	if proc == nil {
		panic(h.name + ": board has no processor")
	}

	if n := proc.NumCores(); n != 1 {
		panic(fmt.Sprintf(
			"%s: hierarchy serves exactly one core, board has %d",
			h.name, n))
	}

	if len(b.MemChannels()) == 0 {
		panic(h.name + ": board has no memory channel")
	}
}

func (h *Hierarchy) wireMemChannel(ch board.MemChannel) {
	if ch.Port == nil {
		panic(fmt.Sprintf("%s: memory channel %s has no port",
			h.name, ch.Name))
	}

	slot := h.xbar.AttachDownstream(ch.Name, ch.Range, ch.Port)
	h.link(fmt.Sprintf("%s.%sConn", h.name, ch.Name), slot, ch.Port)

	h.memChannel = ch
}

// wireRole places the planned path between one of the core's request ports
// and the crossbar: either a direct connection or a private cache.
func (h *Hierarchy) wireRole(
	core board.Core,
	role l1cache.Role,
	plan CachePlan,
) *l1cache.Comp {
	label := roleLabel(role)

	if plan.Kind == PlanNoCache {
		slot := h.xbar.AttachUpstream(label)
		h.connectRolePort(core, role, slot)
		h.link(fmt.Sprintf("%s.%sConn", h.name, label),
			h.rolePort(core, role), slot)

		return nil
	}

	cache := l1cache.MakeBuilder().
		WithEngine(h.engine).
		WithFreq(h.freq).
		WithRole(role).
		WithSpec(plan.Spec).
		Build(fmt.Sprintf("%s.%sCache", h.name, label))

	cache.BindCoreSide(role, h.rolePort(core, role))
	h.connectRolePort(core, role, cache.CoreSidePort())
	h.link(fmt.Sprintf("%s.%sCacheTopConn", h.name, label),
		h.rolePort(core, role), cache.CoreSidePort())

	slot := h.xbar.AttachUpstream(label)
	cache.BindMemSide(slot)
	h.link(fmt.Sprintf("%s.%sCacheBottomConn", h.name, label),
		cache.MemSidePort(), slot)

	return cache
}

func roleLabel(role l1cache.Role) string {
	if role == l1cache.RoleInstruction {
		return "Inst"
	}

	return "Data"
}

func (h *Hierarchy) rolePort(core board.Core, role l1cache.Role) sim.Port {
	if role == l1cache.RoleInstruction {
		return core.ICachePort()
	}

	return core.DCachePort()
}

func (h *Hierarchy) connectRolePort(
	core board.Core,
	role l1cache.Role,
	endpoint sim.Port,
) {
	if role == l1cache.RoleInstruction {
		core.ConnectICache(endpoint)
		return
	}

	core.ConnectDCache(endpoint)
}

func (h *Hierarchy) setupCoherentIO(b board.Board) {
	if !b.HasCoherentIO() {
		return
	}

	slot := h.xbar.AttachUpstream("CoherentIO")
	b.ConnectCoherentIO(slot)
	h.ioPathAttached = true
}

func (h *Hierarchy) wireInterrupts(b board.Board, core board.Core) {
	plan := InterruptPlanFor(
		b.Processor().ISA(),
		h.xbar.MemSidePort(),
		h.xbar.CPUSidePort(),
	)

	if plan.Kind == InterruptSelfContained {
		core.ConnectInterrupt(nil, nil)
		return
	}

	core.ConnectInterrupt(plan.Req, plan.Resp)
}

func (h *Hierarchy) mustBeFullyBound() {
	for _, cache := range []*l1cache.Comp{h.icache, h.dcache} {
		if cache == nil {
			continue
		}
		if !cache.CoreSideBound() || !cache.MemSideBound() {
			panic(cache.Name() + " is not fully bound")
		}
	}
}

// link creates one direct connection between two ports. Every point-to-point
// edge of the topology gets its own connection.
func (h *Hierarchy) link(name string, p1, p2 sim.Port) {
	conn := directconnection.MakeBuilder().
		WithEngine(h.engine).
		WithFreq(h.freq).
		Build(name)
	conn.PlugIn(p1)
	conn.PlugIn(p2)
}

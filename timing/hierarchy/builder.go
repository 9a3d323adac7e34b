package hierarchy

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/timing/badaddr"
	"github.com/sarchlab/vulcansim/timing/l1cache"
	"github.com/sarchlab/vulcansim/timing/xbar"
)

// CachePlanKind tags the per-role decision between a private cache and a
// direct path to the crossbar.
type CachePlanKind int

const (
	// PlanNoCache connects the core's port for the role straight to the
	// crossbar, bypassing per-line timing.
	PlanNoCache CachePlanKind = iota
	// PlanPrivateCache places an L1 cache on the role's path.
	PlanPrivateCache
)

// A CachePlan is the resolved decision for one requester role.
type CachePlan struct {
	Kind CachePlanKind
	Spec l1cache.Spec
}

// Builder can build memory hierarchies.
type Builder struct {
	engine         sim.Engine
	freq           sim.Freq
	xbarWidthBytes int
	icachePlan     CachePlan
	dcachePlan     CachePlan
}

// MakeBuilder creates a builder with no caches planned on either role.
func MakeBuilder() Builder {
	return Builder{
		freq:           1 * sim.GHz,
		xbarWidthBytes: 64,
	}
}

// WithEngine sets the event engine every component of the hierarchy uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the hierarchy works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithXBarWidth sets the crossbar width in bytes per cycle.
func (b Builder) WithXBarWidth(widthBytes int) Builder {
	b.xbarWidthBytes = widthBytes
	return b
}

// WithICache plans a private instruction cache with the given parameters.
func (b Builder) WithICache(spec l1cache.Spec) Builder {
	b.icachePlan = CachePlan{Kind: PlanPrivateCache, Spec: spec}
	return b
}

// WithDCache plans a private data cache with the given parameters.
func (b Builder) WithDCache(spec l1cache.Spec) Builder {
	b.dcachePlan = CachePlan{Kind: PlanPrivateCache, Spec: spec}
	return b
}

// Build builds an unbuilt hierarchy: the crossbar and its error responder
// exist and the default route is installed, but no board is wired until
// IncorporateCache runs.
func (b Builder) Build(name string) *Hierarchy {
	if b.engine == nil {
		panic("hierarchy requires an engine")
	}

	h := &Hierarchy{
		name:       name,
		engine:     b.engine,
		freq:       b.freq,
		icachePlan: b.icachePlan,
		dcachePlan: b.dcachePlan,
	}

	h.xbar = xbar.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithWidthBytes(b.xbarWidthBytes).
		Build(name + ".XBar")

	h.badAddr = badaddr.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		Build(name + ".BadAddr")

	slot := h.xbar.RouteDefaultTo(h.badAddr.TopPort())
	h.link(name+".BadAddrConn", slot, h.badAddr.TopPort())

	return h
}

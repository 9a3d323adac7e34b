package xbar

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

type routeEntry struct {
	rng AddressRange
	dst sim.RemotePort
}

// A RangedPortMapper maps an address to the downstream port whose range
// covers it, falling back to a mandatory default route for every address
// outside all mapped ranges.
type RangedPortMapper struct {
	entries    []routeEntry
	defaultDst sim.RemotePort
	hasDefault bool
}

var _ mem.AddressToPortMapper = (*RangedPortMapper)(nil)

// AddRange registers a destination for an address range. Ranges must not
// overlap.
func (m *RangedPortMapper) AddRange(rng AddressRange, dst sim.RemotePort) {
	if rng.Size == 0 {
		panic(fmt.Sprintf("route to %s covers an empty range", dst))
	}

	for _, e := range m.entries {
		if e.rng.Overlaps(rng) {
			panic(fmt.Sprintf(
				"range [0x%X, 0x%X) overlaps existing route to %s",
				rng.Base, rng.End(), e.dst))
		}
	}

	m.entries = append(m.entries, routeEntry{rng: rng, dst: dst})
}

// SetDefault installs the catch-all destination. It may only be installed
// once.
func (m *RangedPortMapper) SetDefault(dst sim.RemotePort) {
	if m.hasDefault {
		panic("default route already set to " + string(m.defaultDst))
	}

	m.defaultDst = dst
	m.hasDefault = true
}

// HasDefault reports whether the catch-all destination is installed.
func (m *RangedPortMapper) HasDefault() bool {
	return m.hasDefault
}

// Find returns the port that serves the given address. Addresses outside
// every mapped range resolve to the default route.
func (m *RangedPortMapper) Find(address uint64) sim.RemotePort {
	for _, e := range m.entries {
		if e.rng.Contains(address) {
			return e.dst
		}
	}

	if !m.hasDefault {
		panic(fmt.Sprintf(
			"no route covers address 0x%X and no default route is set",
			address))
	}

	return m.defaultDst
}

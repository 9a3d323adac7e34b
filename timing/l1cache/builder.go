package l1cache

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can build cache models.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	role   Role
	spec   Spec
}

// MakeBuilder creates a new builder with the default cache parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
		role: RoleData,
		spec: DefaultSpec(),
	}
}

// WithEngine sets the event engine the cache uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the cache works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithRole sets the requester role the cache serves.
func (b Builder) WithRole(role Role) Builder {
	b.role = role
	return b
}

// WithWayAssociativity sets the number of ways per set.
func (b Builder) WithWayAssociativity(ways int) Builder {
	b.spec.WayAssociativity = ways
	return b
}

// WithTagLatency sets the tag-lookup latency in cycles.
func (b Builder) WithTagLatency(cycles int) Builder {
	b.spec.TagLatency = cycles
	return b
}

// WithDataLatency sets the data-access latency in cycles.
func (b Builder) WithDataLatency(cycles int) Builder {
	b.spec.DataLatency = cycles
	return b
}

// WithResponseLatency sets the response latency in cycles.
func (b Builder) WithResponseLatency(cycles int) Builder {
	b.spec.ResponseLatency = cycles
	return b
}

// WithNumMSHR sets the number of outstanding misses the cache tracks.
func (b Builder) WithNumMSHR(n int) Builder {
	b.spec.NumMSHR = n
	return b
}

// WithTargetsPerMSHR sets the number of secondary requests that can merge
// into one outstanding miss.
func (b Builder) WithTargetsPerMSHR(n int) Builder {
	b.spec.TargetsPerMSHR = n
	return b
}

// WithByteSize sets the cache capacity in bytes.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.spec.ByteSize = byteSize
	return b
}

// WithBlockSize sets the cache line size in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.spec.BlockSize = blockSize
	return b
}

// WithSpec replaces all cache parameters at once.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// Build builds a cache model.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("cache requires an engine")
	}
	b.mustHaveValidSpec()

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.spec = b.spec
	c.role = b.role

	c.topPort = sim.NewPort(c, 4, 4, name+".Top")
	c.AddPort("Top", c.topPort)
	c.bottomPort = sim.NewPort(c, 4, 4, name+".Bottom")
	c.AddPort("Bottom", c.bottomPort)

	return c
}

func (b Builder) mustHaveValidSpec() {
	s := b.spec

	if s.WayAssociativity <= 0 || s.BlockSize <= 0 || s.ByteSize == 0 {
		panic("cache geometry parameters must be positive")
	}

	setSize := uint64(s.BlockSize * s.WayAssociativity)
	if s.ByteSize%setSize != 0 {
		panic(fmt.Sprintf(
			"cache size %d is not an integer number of %d-byte sets",
			s.ByteSize, setSize))
	}

	if s.TagLatency < 0 || s.DataLatency < 0 || s.ResponseLatency < 0 {
		panic("cache latencies must not be negative")
	}

	if s.NumMSHR <= 0 || s.TargetsPerMSHR <= 0 {
		panic("cache must have at least one MSHR and one target per MSHR")
	}
}

// Package agentcore provides a traffic-generating core. It is not an
// instruction-set model: it issues sequential fetches on the instruction
// path and random write-then-read traffic on the data path, verifying that
// every read observes a value previously written to the same address. It
// stands in for an execution engine when exercising memory topologies.
package agentcore

import (
	"encoding/binary"
	"log"
	"math/rand"
	"reflect"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
)

// Comp is the traffic-generating core.
type Comp struct {
	*sim.TickingComponent

	maxAddress uint64

	icachePort sim.Port
	dcachePort sim.Port

	instDst sim.RemotePort
	dataDst sim.RemotePort

	interruptReq   sim.Port
	interruptResp  sim.Port
	interruptWired bool

	// FetchLeft, ReadLeft, and WriteLeft count the accesses still to issue.
	FetchLeft int
	ReadLeft  int
	WriteLeft int

	nextFetchAddr uint64

	knownValues   map[uint64][]uint32
	pendingFetch  map[string]*mem.ReadReq
	pendingReads  map[string]*mem.ReadReq
	pendingWrites map[string]*mem.WriteReq

	verifiedReads int
	mismatches    int
}

// ConnectICache tells the core where to send instruction fetches.
func (c *Comp) ConnectICache(endpoint sim.Port) {
	c.instDst = endpoint.AsRemote()
}

// ConnectDCache tells the core where to send data accesses.
func (c *Comp) ConnectDCache(endpoint sim.Port) {
	c.dataDst = endpoint.AsRemote()
}

// ConnectInterrupt records the interrupt endpoints. Nil endpoints mean the
// core delivers interrupts internally.
func (c *Comp) ConnectInterrupt(req, resp sim.Port) {
	c.interruptReq = req
	c.interruptResp = resp
	c.interruptWired = req != nil && resp != nil
}

// ICachePort returns the core's instruction-fetch connection point.
func (c *Comp) ICachePort() sim.Port {
	return c.icachePort
}

// DCachePort returns the core's data-access connection point.
func (c *Comp) DCachePort() sim.Port {
	return c.dcachePort
}

// InterruptWired reports whether external interrupt endpoints were set.
func (c *Comp) InterruptWired() bool {
	return c.interruptWired
}

// VerifiedReads returns the number of reads that returned a value written
// earlier to the same address.
func (c *Comp) VerifiedReads() int {
	return c.verifiedReads
}

// Mismatches returns the number of reads that returned an unexpected value.
func (c *Comp) Mismatches() int {
	return c.mismatches
}

// Done reports whether every access has been issued and answered.
func (c *Comp) Done() bool {
	return c.FetchLeft == 0 && c.ReadLeft == 0 && c.WriteLeft == 0 &&
		len(c.pendingFetch) == 0 && len(c.pendingReads) == 0 &&
		len(c.pendingWrites) == 0
}

// Tick collects responses and issues new fetches, writes, and reads.
func (c *Comp) Tick() bool {
	madeProgress := c.collectFetchRsps()
	madeProgress = c.collectDataRsps() || madeProgress
	madeProgress = c.doFetch() || madeProgress

	if c.shouldRead() {
		madeProgress = c.doRead() || madeProgress
	} else if c.WriteLeft > 0 {
		madeProgress = c.doWrite() || madeProgress
	}

	return madeProgress
}

func (c *Comp) collectFetchRsps() bool {
	msg := c.icachePort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	rsp, ok := msg.(*mem.DataReadyRsp)
	if !ok {
		log.Panicf("%s: unexpected fetch response of type %s",
			c.Name(), reflect.TypeOf(msg))
	}

	delete(c.pendingFetch, rsp.RespondTo)

	return true
}

func (c *Comp) collectDataRsps() bool {
	msg := c.dcachePort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	switch msg := msg.(type) {
	case *mem.WriteDoneRsp:
		delete(c.pendingWrites, msg.RespondTo)
	case *mem.DataReadyRsp:
		req := c.pendingReads[msg.RespondTo]
		delete(c.pendingReads, msg.RespondTo)
		c.checkReadResult(req, msg)
	default:
		log.Panicf("%s: unexpected data response of type %s",
			c.Name(), reflect.TypeOf(msg))
	}

	return true
}

func (c *Comp) checkReadResult(req *mem.ReadReq, rsp *mem.DataReadyRsp) {
	value := binary.LittleEndian.Uint32(rsp.Data)

	for _, known := range c.knownValues[req.Address] {
		if known == value {
			c.verifiedReads++
			return
		}
	}

	c.mismatches++
}

func (c *Comp) doFetch() bool {
	if c.FetchLeft == 0 {
		return false
	}

	fetch := mem.ReadReqBuilder{}.
		WithSrc(c.icachePort.AsRemote()).
		WithDst(c.instDst).
		WithAddress(c.nextFetchAddr).
		WithByteSize(4).
		WithPID(1).
		Build()

	if err := c.icachePort.Send(fetch); err != nil {
		return false
	}

	c.pendingFetch[fetch.ID] = fetch
	c.nextFetchAddr = (c.nextFetchAddr + 4) % c.maxAddress
	c.FetchLeft--

	return true
}

func (c *Comp) shouldRead() bool {
	if len(c.knownValues) == 0 || c.ReadLeft == 0 {
		return false
	}

	if c.WriteLeft == 0 {
		return true
	}

	return rand.Float64() > 0.5
}

func (c *Comp) doRead() bool {
	address := c.randomWrittenAddress()
	if c.addressPending(address) {
		return false
	}

	read := mem.ReadReqBuilder{}.
		WithSrc(c.dcachePort.AsRemote()).
		WithDst(c.dataDst).
		WithAddress(address).
		WithByteSize(4).
		WithPID(1).
		Build()

	if err := c.dcachePort.Send(read); err != nil {
		return false
	}

	c.pendingReads[read.ID] = read
	c.ReadLeft--

	return true
}

func (c *Comp) doWrite() bool {
	address := rand.Uint64() % (c.maxAddress / 4) * 4
	if c.addressPending(address) {
		return false
	}

	data := rand.Uint32()
	bytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(bytes, data)

	write := mem.WriteReqBuilder{}.
		WithSrc(c.dcachePort.AsRemote()).
		WithDst(c.dataDst).
		WithAddress(address).
		WithData(bytes).
		WithPID(1).
		Build()

	if err := c.dcachePort.Send(write); err != nil {
		return false
	}

	c.pendingWrites[write.ID] = write
	c.knownValues[address] = append(c.knownValues[address], data)
	c.WriteLeft--

	return true
}

func (c *Comp) randomWrittenAddress() uint64 {
	for {
		addr := rand.Uint64() % (c.maxAddress / 4) * 4
		if _, written := c.knownValues[addr]; written {
			return addr
		}
	}
}

func (c *Comp) addressPending(addr uint64) bool {
	for _, write := range c.pendingWrites {
		if write.Address == addr {
			return true
		}
	}

	for _, read := range c.pendingReads {
		if read.Address == addr {
			return true
		}
	}

	return false
}

// Builder can build traffic-generating cores.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	maxAddress  uint64
	accessCount int
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		maxAddress:  1 * mem.MB,
		accessCount: 1000,
	}
}

// WithEngine sets the event engine the core uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the core works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMaxAddress sets the top of the address range the core accesses.
func (b Builder) WithMaxAddress(maxAddress uint64) Builder {
	b.maxAddress = maxAddress
	return b
}

// WithAccessCount sets the number of fetches, reads, and writes the core
// issues, each.
func (b Builder) WithAccessCount(n int) Builder {
	b.accessCount = n
	return b
}

// Build builds a traffic-generating core.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("core requires an engine")
	}
	if b.maxAddress < 8 {
		panic("core address range is too small")
	}

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.maxAddress = b.maxAddress

	c.icachePort = sim.NewPort(c, 1, 1, name+".ICachePort")
	c.AddPort("ICache", c.icachePort)
	c.dcachePort = sim.NewPort(c, 1, 1, name+".DCachePort")
	c.AddPort("DCache", c.dcachePort)

	c.FetchLeft = b.accessCount
	c.ReadLeft = b.accessCount
	c.WriteLeft = b.accessCount

	c.knownValues = make(map[uint64][]uint32)
	c.pendingFetch = make(map[string]*mem.ReadReq)
	c.pendingReads = make(map[string]*mem.ReadReq)
	c.pendingWrites = make(map[string]*mem.WriteReq)

	return c
}

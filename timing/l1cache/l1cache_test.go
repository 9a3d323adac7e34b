package l1cache_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/vulcansim/timing/badaddr"
	"github.com/sarchlab/vulcansim/timing/l1cache"
)

func TestL1Cache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "L1Cache Suite")
}

var _ = Describe("Builder", func() {
	var engine sim.Engine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should build a cache with the default parameters", func() {
		c := l1cache.MakeBuilder().
			WithEngine(engine).
			Build("L1D")

		Expect(c.Spec()).To(Equal(l1cache.DefaultSpec()))
		Expect(c.Role()).To(Equal(l1cache.RoleData))
		Expect(c.CoreSideBound()).To(BeFalse())
		Expect(c.MemSideBound()).To(BeFalse())
	})

	It("should reject a size that does not divide into sets", func() {
		Expect(func() {
			l1cache.MakeBuilder().
				WithEngine(engine).
				WithByteSize(1000).
				WithWayAssociativity(1).
				WithBlockSize(64).
				Build("L1D")
		}).To(Panic())
	})

	It("should reject zero MSHRs", func() {
		Expect(func() {
			l1cache.MakeBuilder().
				WithEngine(engine).
				WithNumMSHR(0).
				Build("L1D")
		}).To(Panic())
	})
})

var _ = Describe("Binding", func() {
	var (
		c        *l1cache.Comp
		endpoint sim.Port
	)

	BeforeEach(func() {
		c = l1cache.MakeBuilder().
			WithEngine(sim.NewSerialEngine()).
			WithRole(l1cache.RoleData).
			Build("L1D")
		endpoint = sim.NewPort(nil, 4, 8, "Endpoint")
	})

	It("should bind the core side once for the matching role", func() {
		c.BindCoreSide(l1cache.RoleData, endpoint)

		Expect(c.CoreSideBound()).To(BeTrue())
		Expect(func() {
			c.BindCoreSide(l1cache.RoleData, endpoint)
		}).To(Panic())
	})

	It("should reject a core-side bind for the wrong role", func() {
		Expect(func() {
			c.BindCoreSide(l1cache.RoleInstruction, endpoint)
		}).To(Panic())
	})

	It("should reject nil endpoints", func() {
		Expect(func() { c.BindCoreSide(l1cache.RoleData, nil) }).To(Panic())
		Expect(func() { c.BindMemSide(nil) }).To(Panic())
	})

	It("should bind the memory side once", func() {
		c.BindMemSide(endpoint)

		Expect(c.MemSideBound()).To(BeTrue())
		Expect(c.LowModule()).To(Equal(endpoint.AsRemote()))
		Expect(func() { c.BindMemSide(endpoint) }).To(Panic())
	})
})

var _ = Describe("Miss handling", func() {
	var (
		engine    sim.Engine
		cache     *l1cache.Comp
		responder *badaddr.Comp
		core      sim.Port
	)

	buildCache := func(spec l1cache.Spec) {
		cache = l1cache.MakeBuilder().
			WithEngine(engine).
			WithRole(l1cache.RoleData).
			WithSpec(spec).
			Build("L1D")

		core = sim.NewPort(nil, 4, 8, "Core")
		topConn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("TopConn")
		topConn.PlugIn(core)
		topConn.PlugIn(cache.CoreSidePort())

		cache.BindCoreSide(l1cache.RoleData, core)
		cache.BindMemSide(responder.TopPort())

		bottomConn := directconnection.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("BottomConn")
		bottomConn.PlugIn(cache.MemSidePort())
		bottomConn.PlugIn(responder.TopPort())
	}

	sendRead := func(addr uint64) *mem.ReadReq {
		read := mem.ReadReqBuilder{}.
			WithSrc(core.AsRemote()).
			WithDst(cache.CoreSidePort().AsRemote()).
			WithAddress(addr).
			WithByteSize(4).
			WithPID(1).
			Build()
		Expect(core.Send(read)).To(BeNil())

		return read
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		responder = badaddr.MakeBuilder().
			WithEngine(engine).
			Build("Mem")
	})

	It("should fetch a whole line and answer the requester", func() {
		buildCache(l1cache.DefaultSpec())

		read := sendRead(0x104)
		Expect(engine.Run()).To(Succeed())

		rsp := core.RetrieveIncoming()
		Expect(rsp).To(BeAssignableToTypeOf(&mem.DataReadyRsp{}))

		dataReady := rsp.(*mem.DataReadyRsp)
		Expect(dataReady.RespondTo).To(Equal(read.ID))
		Expect(dataReady.Data).To(HaveLen(4))
		Expect(responder.BadAccessCount).To(Equal(uint64(1)))
	})

	It("should merge reads to the same line into one fetch", func() {
		buildCache(l1cache.DefaultSpec())

		sendRead(0x100)
		sendRead(0x104)
		Expect(engine.Run()).To(Succeed())

		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(responder.BadAccessCount).To(Equal(uint64(1)))
	})

	It("should fetch separately for reads to different lines", func() {
		buildCache(l1cache.DefaultSpec())

		sendRead(0x100)
		sendRead(0x200)
		Expect(engine.Run()).To(Succeed())

		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(responder.BadAccessCount).To(Equal(uint64(2)))
	})

	It("should drain all requests with a single MSHR", func() {
		spec := l1cache.DefaultSpec()
		spec.NumMSHR = 1
		buildCache(spec)

		sendRead(0x100)
		sendRead(0x200)
		Expect(engine.Run()).To(Succeed())

		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(responder.BadAccessCount).To(Equal(uint64(2)))
	})

	It("should serve a read that crosses a line boundary", func() {
		buildCache(l1cache.DefaultSpec())

		// 4 bytes starting 2 bytes before the 0x140 line boundary.
		read := sendRead(0x13E)
		Expect(engine.Run()).To(Succeed())

		rsp := core.RetrieveIncoming()
		Expect(rsp).To(BeAssignableToTypeOf(&mem.DataReadyRsp{}))

		dataReady := rsp.(*mem.DataReadyRsp)
		Expect(dataReady.RespondTo).To(Equal(read.ID))
		Expect(dataReady.Data).To(HaveLen(4))
		Expect(responder.BadAccessCount).To(Equal(uint64(1)))
	})

	It("should not merge a line-crossing read into a line fetch", func() {
		buildCache(l1cache.DefaultSpec())

		sendRead(0x100)
		sendRead(0x13E)
		Expect(engine.Run()).To(Succeed())

		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(core.RetrieveIncoming()).NotTo(BeNil())
		Expect(responder.BadAccessCount).To(Equal(uint64(2)))
	})

	It("should pass writes through to the memory side", func() {
		buildCache(l1cache.DefaultSpec())

		write := mem.WriteReqBuilder{}.
			WithSrc(core.AsRemote()).
			WithDst(cache.CoreSidePort().AsRemote()).
			WithAddress(0x100).
			WithData([]byte{1, 2, 3, 4}).
			WithPID(1).
			Build()
		Expect(core.Send(write)).To(BeNil())
		Expect(engine.Run()).To(Succeed())

		rsp := core.RetrieveIncoming()
		Expect(rsp).To(BeAssignableToTypeOf(&mem.WriteDoneRsp{}))
		Expect(rsp.(*mem.WriteDoneRsp).RespondTo).To(Equal(write.ID))
		Expect(responder.BadAccessCount).To(Equal(uint64(1)))
	})
})

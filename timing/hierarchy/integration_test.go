package hierarchy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/board/simboard"
	"github.com/sarchlab/vulcansim/timing/hierarchy"
	"github.com/sarchlab/vulcansim/timing/l1cache"
)

var _ = Describe("Composed topology", func() {
	var engine sim.Engine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	run := func(builder hierarchy.Builder) (
		*simboard.Board, *hierarchy.Hierarchy,
	) {
		brd := simboard.MakeBuilder().
			WithEngine(engine).
			WithMemorySize(64 * mem.KB).
			WithMemoryLatency(10).
			WithAccessCount(50).
			Build("Board")

		h := builder.WithEngine(engine).Build("MemSystem")
		h.IncorporateCache(brd)

		brd.Core().TickLater()
		Expect(engine.Run()).To(Succeed())

		return brd, h
	}

	It("should carry traffic end to end without caches", func() {
		brd, h := run(hierarchy.MakeBuilder())

		Expect(brd.Core().Done()).To(BeTrue())
		Expect(brd.Core().VerifiedReads()).To(Equal(50))
		Expect(brd.Core().Mismatches()).To(Equal(0))
		Expect(h.ErrorResponder().BadAccessCount).To(Equal(uint64(0)))
	})

	It("should carry traffic end to end through both caches", func() {
		brd, h := run(hierarchy.MakeBuilder().
			WithICache(l1cache.DefaultSpec()).
			WithDCache(l1cache.DefaultSpec()))

		Expect(brd.Core().Done()).To(BeTrue())
		Expect(brd.Core().VerifiedReads()).To(Equal(50))
		Expect(brd.Core().Mismatches()).To(Equal(0))
		Expect(h.ErrorResponder().BadAccessCount).To(Equal(uint64(0)))
	})
})

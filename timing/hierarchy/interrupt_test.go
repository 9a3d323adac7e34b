package hierarchy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/board"
	"github.com/sarchlab/vulcansim/timing/hierarchy"
)

var _ = Describe("InterruptPlanFor", func() {
	var req, resp sim.Port

	BeforeEach(func() {
		req = sim.NewPort(nil, 4, 8, "Fabric.Req")
		resp = sim.NewPort(nil, 4, 8, "Fabric.Resp")
	})

	It("should route x86 interrupts through the fabric", func() {
		plan := hierarchy.InterruptPlanFor(board.ISAX86, req, resp)

		Expect(plan.Kind).To(Equal(hierarchy.InterruptRoutedThroughFabric))
		Expect(plan.Req).To(Equal(req))
		Expect(plan.Resp).To(Equal(resp))
	})

	It("should keep other ISAs self-contained", func() {
		for _, isa := range []board.ISA{
			board.ISAArm, board.ISARiscV, board.ISAUnknown,
		} {
			plan := hierarchy.InterruptPlanFor(isa, req, resp)

			Expect(plan.Kind).To(Equal(hierarchy.InterruptSelfContained))
			Expect(plan.Req).To(BeNil())
			Expect(plan.Resp).To(BeNil())
		}
	})
})

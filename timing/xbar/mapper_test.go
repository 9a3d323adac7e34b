package xbar_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/vulcansim/timing/xbar"
)

var _ = Describe("AddressRange", func() {
	It("should contain addresses in [Base, Base+Size)", func() {
		r := xbar.AddressRange{Base: 0x1000, Size: 0x1000}

		Expect(r.Contains(0x0FFF)).To(BeFalse())
		Expect(r.Contains(0x1000)).To(BeTrue())
		Expect(r.Contains(0x1FFF)).To(BeTrue())
		Expect(r.Contains(0x2000)).To(BeFalse())
	})

	It("should detect overlapping ranges", func() {
		r := xbar.AddressRange{Base: 0x1000, Size: 0x1000}

		Expect(r.Overlaps(xbar.AddressRange{Base: 0x0, Size: 0x1000})).
			To(BeFalse())
		Expect(r.Overlaps(xbar.AddressRange{Base: 0x1800, Size: 0x1000})).
			To(BeTrue())
		Expect(r.Overlaps(xbar.AddressRange{Base: 0x2000, Size: 0x1000})).
			To(BeFalse())
	})
})

var _ = Describe("RangedPortMapper", func() {
	var (
		mapper *xbar.RangedPortMapper
		dramA  sim.RemotePort
		dramB  sim.RemotePort
		bad    sim.RemotePort
	)

	BeforeEach(func() {
		mapper = new(xbar.RangedPortMapper)
		dramA = sim.RemotePort("DRAM_A.Top")
		dramB = sim.RemotePort("DRAM_B.Top")
		bad = sim.RemotePort("BadAddr.Top")
	})

	It("should route by address range", func() {
		mapper.AddRange(xbar.AddressRange{Base: 0, Size: 0x1000}, dramA)
		mapper.AddRange(xbar.AddressRange{Base: 0x1000, Size: 0x1000}, dramB)

		Expect(mapper.Find(0x0)).To(Equal(dramA))
		Expect(mapper.Find(0xFFF)).To(Equal(dramA))
		Expect(mapper.Find(0x1000)).To(Equal(dramB))
	})

	It("should fall back to the default route", func() {
		mapper.AddRange(xbar.AddressRange{Base: 0, Size: 0x1000}, dramA)
		mapper.SetDefault(bad)

		Expect(mapper.HasDefault()).To(BeTrue())
		Expect(mapper.Find(0x2000)).To(Equal(bad))
	})

	It("should panic on unmapped address without a default route", func() {
		mapper.AddRange(xbar.AddressRange{Base: 0, Size: 0x1000}, dramA)

		Expect(func() { mapper.Find(0x2000) }).To(Panic())
	})

	It("should reject overlapping ranges", func() {
		mapper.AddRange(xbar.AddressRange{Base: 0, Size: 0x1000}, dramA)

		Expect(func() {
			mapper.AddRange(
				xbar.AddressRange{Base: 0x800, Size: 0x1000}, dramB)
		}).To(Panic())
	})

	It("should reject empty ranges", func() {
		Expect(func() {
			mapper.AddRange(xbar.AddressRange{Base: 0, Size: 0}, dramA)
		}).To(Panic())
	})

	It("should reject a second default route", func() {
		mapper.SetDefault(bad)

		Expect(func() { mapper.SetDefault(dramA) }).To(Panic())
	})
})

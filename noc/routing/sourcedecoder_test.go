package routing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SourceDecoder", func() {
	var d *SourceDecoder

	BeforeEach(func() {
		// 2 local ports, 4 remote ports. Each hop consumes 2 local bits
		// plus a 2-bit remote index.
		d = NewSourceDecoder(2, 4)
	})

	It("should report the hop width", func() {
		Expect(d.HopWidth()).To(Equal(4))
	})

	It("should terminate at local ports when the remaining route is zero", func() {
		decision := d.Decode(0b01, false)

		Expect(decision.DestPorts).To(Equal(uint64(0b01)))
		Expect(decision.Multicast).To(BeFalse())
		Expect(decision.NextRoute).To(Equal(uint64(0)))
	})

	It("should continue on a remote port while route bits remain", func() {
		// This hop: no local delivery, remote index 2. Next hop: local
		// port 1.
		route := uint64(0b10)<<4 | uint64(0b10)<<2

		decision := d.Decode(route, false)

		Expect(decision.DestPorts).To(Equal(OneHot(2 + 2)))
		Expect(decision.NextRoute).To(Equal(uint64(0b10)))
	})

	It("should deliver locally and continue remotely in the same hop", func() {
		// Local port 0 plus remote index 1, with one more hop to go.
		route := uint64(0b01)<<4 | uint64(0b01)<<2 | uint64(0b01)

		decision := d.Decode(route, true)

		Expect(decision.DestPorts).To(Equal(uint64(0b01) | OneHot(2+1)))
		Expect(decision.Multicast).To(BeTrue())
		Expect(decision.LocalPorts).To(Equal(uint64(0b01)))
		Expect(decision.ForwardRoute(0)).To(Equal(uint64(0)))
		Expect(decision.ForwardRoute(3)).To(Equal(uint64(0b01)))
	})

	It("should panic without local ports", func() {
		Expect(func() { NewSourceDecoder(0, 4) }).To(Panic())
	})
})

package arbitration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RoundRobin", func() {
	var a Arbiter

	BeforeEach(func() {
		a = NewRoundRobin(4)
	})

	It("should grant nothing when no requester is valid", func() {
		Expect(a.Pick(0)).To(Equal(uint64(0)))
	})

	It("should rotate among continuously asserting requesters", func() {
		Expect(a.Pick(0b1111)).To(Equal(uint64(0b0001)))
		Expect(a.Pick(0b1111)).To(Equal(uint64(0b0010)))
		Expect(a.Pick(0b1111)).To(Equal(uint64(0b0100)))
		Expect(a.Pick(0b1111)).To(Equal(uint64(0b1000)))
		Expect(a.Pick(0b1111)).To(Equal(uint64(0b0001)))
	})

	It("should skip invalid requesters", func() {
		Expect(a.Pick(0b0101)).To(Equal(uint64(0b0001)))
		Expect(a.Pick(0b0101)).To(Equal(uint64(0b0100)))
		Expect(a.Pick(0b0101)).To(Equal(uint64(0b0001)))
	})

	It("should wrap around past the priority pointer", func() {
		a.Pick(0b1000)

		Expect(a.Pick(0b0001)).To(Equal(uint64(0b0001)))
	})

	It("should not starve a requester behind a greedy one", func() {
		Expect(a.Pick(0b0011)).To(Equal(uint64(0b0001)))
		Expect(a.Pick(0b0011)).To(Equal(uint64(0b0010)))
		Expect(a.Pick(0b0011)).To(Equal(uint64(0b0001)))
	})

	It("should restore initial priority on reset", func() {
		a.Pick(0b1111)
		a.Pick(0b1111)

		a.Reset()

		Expect(a.Pick(0b1111)).To(Equal(uint64(0b0001)))
	})

	It("should reject masks wider than the arbiter", func() {
		Expect(func() { a.Pick(0b10000) }).To(Panic())
	})

	It("should reject invalid widths", func() {
		Expect(func() { NewRoundRobin(0) }).To(Panic())
		Expect(func() { NewRoundRobin(65) }).To(Panic())
	})
})

var _ = Describe("Static", func() {
	It("should always grant the lowest-indexed valid requester", func() {
		a := NewStatic(4)

		Expect(a.Pick(0b1100)).To(Equal(uint64(0b0100)))
		Expect(a.Pick(0b1100)).To(Equal(uint64(0b0100)))
		Expect(a.Pick(0)).To(Equal(uint64(0)))
	})
})

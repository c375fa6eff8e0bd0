package routing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bitmap helpers", func() {
	It("should build masks", func() {
		Expect(Mask(0)).To(Equal(uint64(0)))
		Expect(Mask(1)).To(Equal(uint64(0b1)))
		Expect(Mask(4)).To(Equal(uint64(0b1111)))
		Expect(Mask(64)).To(Equal(^uint64(0)))
	})

	It("should panic on out-of-range mask widths", func() {
		Expect(func() { Mask(-1) }).To(Panic())
		Expect(func() { Mask(65) }).To(Panic())
	})

	It("should convert between indices and one-hot bitmaps", func() {
		Expect(OneHot(0)).To(Equal(uint64(1)))
		Expect(OneHot(5)).To(Equal(uint64(32)))
		Expect(IndexOf(OneHot(17))).To(Equal(17))
	})

	It("should panic when a bitmap is not one-hot", func() {
		Expect(func() { IndexOf(0) }).To(Panic())
		Expect(func() { IndexOf(0b101) }).To(Panic())
	})

	It("should count set bits", func() {
		Expect(PopCount(0)).To(Equal(0))
		Expect(PopCount(0b1011)).To(Equal(3))
	})

	It("should compute index widths", func() {
		Expect(WidthOf(0)).To(Equal(1))
		Expect(WidthOf(1)).To(Equal(1))
		Expect(WidthOf(2)).To(Equal(1))
		Expect(WidthOf(3)).To(Equal(2))
		Expect(WidthOf(4)).To(Equal(2))
		Expect(WidthOf(5)).To(Equal(3))
		Expect(WidthOf(16)).To(Equal(4))
		Expect(WidthOf(17)).To(Equal(5))
	})

	It("should visit set bits from low to high", func() {
		var visited []int
		ForEachSetBit(0b101010, func(i int) {
			visited = append(visited, i)
		})

		Expect(visited).To(Equal([]int{1, 3, 5}))
	})
})

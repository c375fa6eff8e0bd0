// Package routing provides the route decoding policies of the network:
// hop-consumable source routing and two-level table routing with multicast
// support. Destinations are represented as bitmaps with one bit per output
// port.
package routing

import (
	"fmt"
	"math/bits"
)

// Mask returns a bitmask with the low width bits set.
func Mask(width int) uint64 {
	if width < 0 || width > 64 {
		panic(fmt.Sprintf("mask width %d out of range", width))
	}

	if width == 64 {
		return ^uint64(0)
	}

	return uint64(1)<<width - 1
}

// OneHot returns a bitmap with only the index-th bit set.
func OneHot(index int) uint64 {
	if index < 0 || index >= 64 {
		panic(fmt.Sprintf("one-hot index %d out of range", index))
	}

	return uint64(1) << index
}

// IndexOf converts a one-hot bitmap to the index of its set bit.
func IndexOf(oneHot uint64) int {
	if bits.OnesCount64(oneHot) != 1 {
		panic("bitmap is not one-hot")
	}

	return bits.TrailingZeros64(oneHot)
}

// PopCount returns the number of set bits in the bitmap.
func PopCount(bitmap uint64) int {
	return bits.OnesCount64(bitmap)
}

// WidthOf returns the number of bits needed to encode indices 0..n-1.
func WidthOf(n int) int {
	if n <= 1 {
		return 1
	}

	return bits.Len64(uint64(n - 1))
}

// ForEachSetBit calls f with the index of every set bit, from the lowest to
// the highest.
func ForEachSetBit(bitmap uint64, f func(index int)) {
	for bitmap != 0 {
		index := bits.TrailingZeros64(bitmap)
		f(index)
		bitmap &= bitmap - 1
	}
}

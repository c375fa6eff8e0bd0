// Package arbitration provides arbiters that resolve conflicting requests
// bit-mask by bit-mask.
package arbitration

import (
	"fmt"
	"math/bits"
)

// An Arbiter picks one winner among a bitmask of valid requesters. The
// returned mask is one-hot, or all-zero if no requester is valid.
type Arbiter interface {
	Pick(valid uint64) uint64

	// Reset restores the arbiter to its initial priority state.
	Reset()
}

// NewRoundRobin creates an arbiter that rotates priority to just after the
// previously granted requester, so that no continuously asserting requester
// starves.
func NewRoundRobin(numReqs int) Arbiter {
	widthMustBeValid(numReqs)

	return &roundRobin{numReqs: numReqs}
}

type roundRobin struct {
	numReqs int
	next    int
}

func (a *roundRobin) Pick(valid uint64) uint64 {
	validMustFitWidth(valid, a.numReqs)

	if valid == 0 {
		return 0
	}

	// Requesters at or above the priority pointer win over the wrapped-around
	// ones.
	upper := valid &^ (uint64(1)<<a.next - 1)

	var winner int
	if upper != 0 {
		winner = bits.TrailingZeros64(upper)
	} else {
		winner = bits.TrailingZeros64(valid)
	}

	a.next = winner + 1
	if a.next >= a.numReqs {
		a.next = 0
	}

	return uint64(1) << winner
}

func (a *roundRobin) Reset() {
	a.next = 0
}

// NewStatic creates a stateless arbiter that always grants the
// lowest-indexed valid requester.
func NewStatic(numReqs int) Arbiter {
	widthMustBeValid(numReqs)

	return static{numReqs: numReqs}
}

type static struct {
	numReqs int
}

func (a static) Pick(valid uint64) uint64 {
	validMustFitWidth(valid, a.numReqs)

	if valid == 0 {
		return 0
	}

	return uint64(1) << bits.TrailingZeros64(valid)
}

func (a static) Reset() {}

func widthMustBeValid(numReqs int) {
	if numReqs <= 0 || numReqs > 64 {
		panic(fmt.Sprintf("arbiter width %d out of range", numReqs))
	}
}

func validMustFitWidth(valid uint64, numReqs int) {
	if numReqs < 64 && valid>>numReqs != 0 {
		panic("request mask has bits beyond the arbiter width")
	}
}

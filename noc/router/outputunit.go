package router

import (
	"github.com/sarchlab/wormnet/noc/messaging"
	"github.com/sarchlab/wormnet/sim"
)

// outputUnit is the per-output-port infrastructure: the per-VC downstream
// credit counters, the packet interleaving guards, and the one-flit staging
// register in front of the link.
type outputUnit struct {
	port   sim.Port
	remote sim.RemotePort

	// credits tracks the downstream buffer space per VC, as seen locally.
	credits []int

	// readyForNewPkt is true while no packet occupies the (output, VC) lane,
	// so a new head flit may be granted.
	readyForNewPkt []bool

	// owner is the input index whose packet currently occupies the
	// (output, VC) lane, -1 if none. Only that input's body and tail flits
	// may continue on the lane.
	owner []int

	// staged holds the flit that won the crossbar this cycle, or the flit
	// whose push failed and is retried. stagedInput names the input it came
	// from.
	staged      *messaging.Flit
	stagedInput int

	// stall is raised when the downstream push fails. A stalled output does
	// not participate in arbitration until the staged flit leaves.
	stall bool
}

func newOutputUnit(
	port sim.Port,
	remote sim.RemotePort,
	numVCs, bufDepth int,
) *outputUnit {
	u := &outputUnit{
		port:   port,
		remote: remote,
	}

	for vc := 0; vc < numVCs; vc++ {
		u.credits = append(u.credits, bufDepth)
		u.readyForNewPkt = append(u.readyForNewPkt, true)
		u.owner = append(u.owner, -1)
	}

	return u
}

// free tells whether the output can stage a new flit this cycle.
func (u *outputUnit) free() bool {
	return !u.stall && u.staged == nil
}

func (u *outputUnit) reset(bufDepth int) {
	for vc := range u.credits {
		u.credits[vc] = bufDepth
		u.readyForNewPkt[vc] = true
		u.owner[vc] = -1
	}

	u.staged = nil
	u.stagedInput = -1
	u.stall = false
}

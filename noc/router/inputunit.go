package router

import (
	"fmt"

	"github.com/sarchlab/wormnet/noc/arbitration"
	"github.com/sarchlab/wormnet/noc/routing"
	"github.com/sarchlab/wormnet/sim"
)

// inputVC is the state that one virtual channel of one input port owns: the
// flit buffer, the pending credit returns, and the routing state of the
// packet currently crossing the VC.
type inputVC struct {
	buf             sim.Buffer
	creditsToReturn int

	// routed is true after the head flit at the front of the buffer has been
	// decoded. The decision stays cached until the head wins arbitration.
	routed   bool
	decision routing.Decision

	// inPacket is true from the cycle the head flit is granted until the
	// cycle the tail flit is granted. Body and tail flits follow the head to
	// packetOutputs without being decoded again.
	inPacket      bool
	packetOutputs uint64
}

// inputUnit is the per-input-port infrastructure: one buffer per VC, the
// VC-selection arbiter, and the credit return path to the upstream sender.
type inputUnit struct {
	port         sim.Port
	creditPort   sim.Port
	creditRemote sim.RemotePort

	vcs      []*inputVC
	vcPicker arbitration.Arbiter

	// selectedVC is the VC competing for outputs this cycle, -1 if none.
	selectedVC int
}

func newInputUnit(
	port, creditPort sim.Port,
	creditRemote sim.RemotePort,
	numVCs, bufDepth int,
) *inputUnit {
	u := &inputUnit{
		port:         port,
		creditPort:   creditPort,
		creditRemote: creditRemote,
		vcPicker:     arbitration.NewRoundRobin(numVCs),
		selectedVC:   -1,
	}

	for vc := 0; vc < numVCs; vc++ {
		u.vcs = append(u.vcs, &inputVC{
			buf: sim.NewBuffer(
				fmt.Sprintf("%s.VCBuf[%d]", port.Name(), vc), bufDepth),
		})
	}

	return u
}

// pendingVCMask returns the bitmask of VCs that hold at least one flit.
func (u *inputUnit) pendingVCMask() uint64 {
	var mask uint64

	for vc, state := range u.vcs {
		if state.buf.Size() > 0 {
			mask |= routing.OneHot(vc)
		}
	}

	return mask
}

func (u *inputUnit) reset() {
	u.vcPicker.Reset()
	u.selectedVC = -1

	for _, state := range u.vcs {
		state.buf.Clear()
		state.creditsToReturn = 0
		state.routed = false
		state.inPacket = false
		state.packetOutputs = 0
	}
}

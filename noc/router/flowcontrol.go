package router

import "log"

// A FlowControlPolicy decides when an output port can accept one more flit
// on a virtual channel, and keeps the associated book-keeping.
type FlowControlPolicy interface {
	// CanSend reports whether one more flit fits on the (output, VC) lane.
	// Multicast head flits ask for room for a whole packet, so that a
	// granted multicast can never wedge mid-packet on a credit shortage.
	CanSend(o *outputUnit, vc int, multicastHead bool) bool

	// OnSent accounts for a flit that left on the (output, VC) lane.
	OnSent(o *outputUnit, vc int)

	// OnCredit accounts for a credit that came back for the (output, VC)
	// lane.
	OnCredit(o *outputUnit, vc int)
}

// creditFlowControl implements credit-based flow control: every (output, VC)
// lane holds an integer number of credits bounded by the downstream buffer
// capacity.
type creditFlowControl struct {
	bufDepth      int
	maxPacketSize int
}

func (p creditFlowControl) CanSend(
	o *outputUnit,
	vc int,
	multicastHead bool,
) bool {
	if multicastHead {
		return o.credits[vc] >= p.maxPacketSize
	}

	return o.credits[vc] > 0
}

func (p creditFlowControl) OnSent(o *outputUnit, vc int) {
	if o.credits[vc] <= 0 {
		log.Panicf("%s: sending on vc %d without credit", o.port.Name(), vc)
	}

	o.credits[vc]--
}

func (p creditFlowControl) OnCredit(o *outputUnit, vc int) {
	if o.credits[vc] >= p.bufDepth {
		log.Panicf("%s: credit counter for vc %d beyond capacity %d",
			o.port.Name(), vc, p.bufDepth)
	}

	o.credits[vc]++
}

// bufferedFlowControl implements the non-credit output-buffered variant: an
// output is available as long as its staging register and downstream port
// buffer absorb the flit, which the staging/stall logic already guarantees.
type bufferedFlowControl struct{}

func (p bufferedFlowControl) CanSend(_ *outputUnit, _ int, _ bool) bool {
	return true
}

func (p bufferedFlowControl) OnSent(_ *outputUnit, _ int) {}

func (p bufferedFlowControl) OnCredit(o *outputUnit, _ int) {
	log.Panicf("%s: credit received on a non-credit output", o.port.Name())
}

// Package router provides a wormhole, virtual-channel packet router with
// credit-based flow control and unicast/multicast support.
package router

import (
	"fmt"

	"github.com/sarchlab/wormnet/noc/arbitration"
	"github.com/sarchlab/wormnet/noc/messaging"
	"github.com/sarchlab/wormnet/noc/routing"
	"github.com/sarchlab/wormnet/sim"
)

// Comp is the router component. Every cycle it receives credits, fills the
// input queues, selects one VC per input, decodes head flits, arbitrates the
// inputs against the outputs, crosses the winning flits over, and returns
// credits upstream.
type Comp struct {
	*sim.TickingComponent

	numVCs   int
	bufDepth int

	decoder  routing.Decoder
	flowCtrl FlowControlPolicy

	inputs  []*inputUnit
	outputs []*outputUnit

	// One round-robin arbiter per output port, over the inputs.
	outArbiters []arbitration.Arbiter
}

// grant records one input whose selected flit won one or more outputs this
// cycle.
type grant struct {
	input   int
	vc      int
	outputs uint64
}

// HookPosFlitArrive marks a flit entering an input buffer.
var HookPosFlitArrive = &sim.HookPos{Name: "RouterFlitArrive"}

// HookPosFlitTraverse marks a flit crossing from an input to an output.
var HookPosFlitTraverse = &sim.HookPos{Name: "RouterFlitTraverse"}

// HookPosFlitSend marks a flit leaving on a link.
var HookPosFlitSend = &sim.HookPos{Name: "RouterFlitSend"}

// Decoder returns the route decoder used by the router.
func (c *Comp) Decoder() routing.Decoder {
	return c.decoder
}

// NumPorts returns the number of ports added to the router.
func (c *Comp) NumPorts() int {
	return len(c.inputs)
}

// Reset restores the router to its post-configuration state: queues empty,
// credit counters full, all lanes ready for a new packet, arbiters at their
// initial priority.
func (c *Comp) Reset() {
	for _, in := range c.inputs {
		in.reset()
	}

	for _, out := range c.outputs {
		out.reset(c.bufDepth)
	}

	c.outArbiters = nil
	c.ensureArbiters()
}

func (c *Comp) ensureArbiters() {
	if c.outArbiters != nil {
		return
	}

	for range c.outputs {
		c.outArbiters = append(c.outArbiters,
			arbitration.NewRoundRobin(len(c.inputs)))
	}
}

// Tick evaluates one cycle of the router.
func (c *Comp) Tick() bool {
	c.ensureArbiters()

	madeProgress := false

	madeProgress = c.receiveCredits() || madeProgress
	madeProgress = c.acceptFlits() || madeProgress
	c.selectVCs()
	madeProgress = c.decodeRoutes() || madeProgress
	grants := c.arbitrate()
	madeProgress = c.traverse(grants) || madeProgress
	madeProgress = c.sendOut() || madeProgress
	madeProgress = c.returnCredits() || madeProgress

	return madeProgress
}

// receiveCredits drains the inbound credit messages and tops up the output
// credit counters.
func (c *Comp) receiveCredits() bool {
	madeProgress := false

	for i, in := range c.inputs {
		for {
			msg := in.creditPort.PeekIncoming()
			if msg == nil {
				break
			}

			credit := msg.(*messaging.Credit)
			c.vcMustBeValid(credit.VC)
			c.flowCtrl.OnCredit(c.outputs[i], credit.VC)
			in.creditPort.RetrieveIncoming()
			madeProgress = true
		}
	}

	return madeProgress
}

// acceptFlits moves arriving flits into the per-VC input buffers. The
// upstream sender holds a credit for every flit it sends, so the buffer
// always has room; a full buffer here means the flow-control contract was
// violated and Push panics.
func (c *Comp) acceptFlits() bool {
	madeProgress := false

	for _, in := range c.inputs {
		msg := in.port.PeekIncoming()
		if msg == nil {
			continue
		}

		flit := msg.(*messaging.Flit)
		c.vcMustBeValid(flit.VC)

		in.vcs[flit.VC].buf.Push(flit)
		in.port.RetrieveIncoming()

		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFlitArrive,
			Item:   flit,
		})

		madeProgress = true
	}

	return madeProgress
}

// selectVCs picks, for every input, the one VC that competes for outputs
// this cycle.
func (c *Comp) selectVCs() {
	for _, in := range c.inputs {
		in.selectedVC = -1

		mask := in.pendingVCMask()
		if mask == 0 {
			continue
		}

		in.selectedVC = routing.IndexOf(in.vcPicker.Pick(mask))
	}
}

// decodeRoutes decodes the head flit at the front of each selected VC, once
// per packet.
func (c *Comp) decodeRoutes() bool {
	madeProgress := false

	for _, in := range c.inputs {
		if in.selectedVC < 0 {
			continue
		}

		state := in.vcs[in.selectedVC]
		flit := state.buf.Peek().(*messaging.Flit)

		if !flit.IsHead() || state.routed {
			continue
		}

		state.decision = c.decoder.Decode(flit.Route, flit.Multicast)
		if state.decision.DestPorts == 0 {
			panic(fmt.Sprintf("%s: flit %s decodes to no destination",
				c.Name(), flit.ID))
		}

		state.routed = true
		madeProgress = true
	}

	return madeProgress
}

// arbitrate builds the request matrices and resolves them: multicast
// requests first, all-or-nothing, walking the inputs in index order; then
// one round-robin arbitration per output port over the unicast requests.
func (c *Comp) arbitrate() []grant {
	var grants []grant

	requests := make([]uint64, len(c.inputs))
	multicast := make([]bool, len(c.inputs))

	for i, in := range c.inputs {
		requests[i], multicast[i] = c.requestOf(i, in)
	}

	// The outputs already claimed by a granted multicast this cycle.
	var claimed uint64

	for i := range c.inputs {
		if requests[i] == 0 || !multicast[i] {
			continue
		}

		if requests[i]&claimed != 0 {
			continue
		}

		claimed |= requests[i]
		grants = append(grants, grant{
			input:   i,
			vc:      c.inputs[i].selectedVC,
			outputs: requests[i],
		})
	}

	for k := range c.outputs {
		outBit := routing.OneHot(k)
		if claimed&outBit != 0 {
			continue
		}

		var valid uint64
		for i := range c.inputs {
			if !multicast[i] && requests[i]&outBit != 0 {
				valid |= routing.OneHot(i)
			}
		}

		winners := c.outArbiters[k].Pick(valid)
		if winners == 0 {
			continue
		}

		winner := routing.IndexOf(winners)
		grants = append(grants, grant{
			input:   winner,
			vc:      c.inputs[winner].selectedVC,
			outputs: outBit,
		})
	}

	return grants
}

// requestOf computes the outputs that input i requests this cycle, already
// filtered by per-output eligibility. Multicast requests are all-or-nothing:
// if any requested output is ineligible, the whole request is withdrawn for
// this cycle.
func (c *Comp) requestOf(i int, in *inputUnit) (request uint64, mcast bool) {
	if in.selectedVC < 0 {
		return 0, false
	}

	vc := in.selectedVC
	state := in.vcs[vc]
	flit := state.buf.Peek().(*messaging.Flit)

	var wanted uint64

	switch {
	case state.inPacket:
		wanted = state.packetOutputs
		mcast = routing.PopCount(wanted) > 1
	case state.routed:
		wanted = state.decision.DestPorts
		mcast = state.decision.Multicast
	default:
		// Head flit not decoded yet (body flits are always covered by
		// inPacket).
		return 0, false
	}

	eligible := uint64(0)
	routing.ForEachSetBit(wanted, func(k int) {
		if c.eligible(i, vc, flit, k) {
			eligible |= routing.OneHot(k)
		}
	})

	if mcast {
		// All requested outputs must be simultaneously available, so that
		// the packet is never partially delivered.
		if eligible != wanted {
			return 0, true
		}

		return wanted, true
	}

	return eligible, false
}

// eligible checks one (input, output) pair of the arbitration matrix.
func (c *Comp) eligible(i, vc int, flit *messaging.Flit, k int) bool {
	out := c.outputs[k]

	if !out.free() {
		return false
	}

	if flit.IsHead() && !c.inputs[i].vcs[vc].inPacket {
		if !out.readyForNewPkt[vc] {
			return false
		}
	} else if out.owner[vc] != i {
		return false
	}

	multicastHead := flit.IsHead() && flit.Multicast &&
		!c.inputs[i].vcs[vc].inPacket

	return c.flowCtrl.CanSend(out, vc, multicastHead)
}

// traverse pops every granted input queue, counts the credit to return, and
// stages the flit into each granted output with the route payload rewritten
// for the next hop.
func (c *Comp) traverse(grants []grant) bool {
	madeProgress := false

	for _, g := range grants {
		in := c.inputs[g.input]
		state := in.vcs[g.vc]

		flit := state.buf.Pop().(*messaging.Flit)
		state.creditsToReturn++

		c.updatePacketState(state, flit, g.outputs)
		c.stage(g, state, flit)

		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFlitTraverse,
			Item:   flit,
		})

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) updatePacketState(
	state *inputVC,
	flit *messaging.Flit,
	outputs uint64,
) {
	if flit.IsHead() {
		state.routed = false
		state.inPacket = true
		state.packetOutputs = outputs
	}

	if flit.IsTail() {
		state.inPacket = false
		state.packetOutputs = 0
	}
}

func (c *Comp) stage(g grant, state *inputVC, flit *messaging.Flit) {
	decision := state.decision

	first := true
	routing.ForEachSetBit(g.outputs, func(k int) {
		outFlit := flit
		if !first {
			outFlit = flit.Clone().(*messaging.Flit)
		}
		first = false

		if outFlit.IsHead() {
			outFlit.Route = decision.ForwardRoute(k)
		}

		out := c.outputs[k]
		out.staged = outFlit
		out.stagedInput = g.input
	})
}

// sendOut pushes every staged flit toward its link. A failed push raises the
// output's stall so that the same flit is retried next cycle without a new
// arbitration.
func (c *Comp) sendOut() bool {
	madeProgress := false

	for _, out := range c.outputs {
		if out.staged == nil {
			continue
		}

		flit := out.staged
		flit.Meta().Src = out.port.AsRemote()
		flit.Meta().Dst = out.remote

		if err := out.port.Send(flit); err != nil {
			out.stall = true
			continue
		}

		out.staged = nil
		out.stall = false

		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosFlitSend,
			Item:   flit,
		})

		vc := flit.VC
		c.flowCtrl.OnSent(out, vc)

		switch {
		case flit.IsTail():
			out.readyForNewPkt[vc] = true
			out.owner[vc] = -1
		case flit.IsHead():
			out.readyForNewPkt[vc] = false
			out.owner[vc] = out.stagedInput
		}

		madeProgress = true
	}

	return madeProgress
}

// returnCredits sends at most one credit per (input, VC) lane per cycle back
// to the upstream sender.
func (c *Comp) returnCredits() bool {
	madeProgress := false

	for _, in := range c.inputs {
		for vc, state := range in.vcs {
			if state.creditsToReturn == 0 {
				continue
			}

			credit := messaging.MakeCredit(
				in.creditPort.AsRemote(), in.creditRemote, vc)

			if err := in.creditPort.Send(credit); err != nil {
				continue
			}

			state.creditsToReturn--
			madeProgress = true
		}
	}

	return madeProgress
}

func (c *Comp) vcMustBeValid(vc int) {
	if vc < 0 || vc >= c.numVCs {
		panic(fmt.Sprintf("%s: virtual channel %d out of range, %d VCs",
			c.Name(), vc, c.numVCs))
	}
}

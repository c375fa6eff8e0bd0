// Package endpoint provides the component that bridges device ports and the
// router network. It splits outgoing messages into flits, injects them under
// credit control, reassembles incoming flits, and returns credits for the
// flits it consumes.
package endpoint

import (
	"container/list"
	"fmt"
	"math"

	"github.com/sarchlab/wormnet/noc/messaging"
	"github.com/sarchlab/wormnet/sim"
)

// A RouteTable translates a message destination into the route payload that
// is injected into head flits.
type RouteTable interface {
	RouteOf(dst sim.RemotePort) (route uint64, multicast bool)
}

// MapRouteTable is a RouteTable backed by a map.
type MapRouteTable map[sim.RemotePort]uint64

// RouteOf looks up the route payload of a destination.
func (t MapRouteTable) RouteOf(dst sim.RemotePort) (uint64, bool) {
	route, found := t[dst]
	if !found {
		panic(fmt.Sprintf("no route defined for %s", dst))
	}

	return route, false
}

// A MulticastRouteTable is a RouteTable that also resolves group
// destinations. A group is a destination name shared by several endpoints;
// its route payload carries the destination bitfields of all the members.
type MulticastRouteTable struct {
	Unicast MapRouteTable
	Groups  map[sim.RemotePort]uint64
}

// RouteOf looks up the route payload of a destination, preferring groups.
func (t MulticastRouteTable) RouteOf(dst sim.RemotePort) (uint64, bool) {
	if route, found := t.Groups[dst]; found {
		return route, true
	}

	return t.Unicast.RouteOf(dst)
}

type msgToAssemble struct {
	msg             sim.Msg
	numFlitRequired int
	numFlitArrived  int
	multicast       bool
}

// Comp is the endpoint component.
type Comp struct {
	*sim.TickingComponent

	DevicePorts []sim.Port
	NetworkPort sim.Port
	CreditPort  sim.Port

	networkRemote sim.RemotePort
	creditRemote  sim.RemotePort

	routeTable       RouteTable
	numVCs           int
	flitByteSize     int
	encodingOverhead float64

	// credits tracks the space left in the router's input buffers, per VC.
	credits         []int
	initCredits     int
	creditsToReturn []int

	nextVC      int
	msgOutBuf   []sim.Msg
	flitsToSend []*messaging.Flit

	assemblingMsgTable map[string]*list.Element
	assemblingMsgs     *list.List
	assembledMsgs      []*msgToAssemble

	groupPorts map[sim.RemotePort]sim.Port
}

// PlugIn connects a device port to the endpoint.
func (c *Comp) PlugIn(port sim.Port) {
	port.SetConnection(c)
	c.DevicePorts = append(c.DevicePorts, port)
}

// Subscribe makes the device port receive the messages addressed to the
// group.
func (c *Comp) Subscribe(group sim.RemotePort, port sim.Port) {
	if c.groupPorts == nil {
		c.groupPorts = make(map[sim.RemotePort]sim.Port)
	}

	c.groupPorts[group] = port
}

// Unplug removes the association of a port and an endpoint.
func (c *Comp) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable triggers the endpoint to continue to tick.
func (c *Comp) NotifyAvailable(_ sim.Port) {
	c.TickLater()
}

// NotifySend is called by a device port to notify that messages are waiting
// to be sent.
func (c *Comp) NotifySend() {
	c.TickLater()
}

// Tick updates the endpoint state.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.sendFlitOut() || madeProgress
	madeProgress = c.prepareFlits() || madeProgress
	madeProgress = c.prepareMsg() || madeProgress
	madeProgress = c.tryDeliver() || madeProgress
	madeProgress = c.assemble() || madeProgress
	madeProgress = c.recv() || madeProgress
	madeProgress = c.receiveCredits() || madeProgress
	madeProgress = c.returnCredits() || madeProgress

	return madeProgress
}

// sendFlitOut injects the prepared flits into the network, one per cycle,
// only while a credit is held for the flit's VC.
func (c *Comp) sendFlitOut() bool {
	if len(c.flitsToSend) == 0 {
		return false
	}

	flit := c.flitsToSend[0]
	if c.credits[flit.VC] == 0 {
		return false
	}

	flit.Meta().Src = c.NetworkPort.AsRemote()
	flit.Meta().Dst = c.networkRemote

	if err := c.NetworkPort.Send(flit); err != nil {
		return false
	}

	c.credits[flit.VC]--
	c.flitsToSend = c.flitsToSend[1:]

	if len(c.flitsToSend) == 0 {
		for _, p := range c.DevicePorts {
			p.NotifyAvailable()
		}
	}

	return true
}

// prepareMsg collects the outgoing messages from the device ports.
func (c *Comp) prepareMsg() bool {
	madeProgress := false

	for _, port := range c.DevicePorts {
		if port.PeekOutgoing() == nil {
			continue
		}

		msg := port.RetrieveOutgoing()
		c.msgOutBuf = append(c.msgOutBuf, msg)
		madeProgress = true
	}

	return madeProgress
}

// prepareFlits splits the queued messages into flit sequences.
func (c *Comp) prepareFlits() bool {
	madeProgress := false

	for len(c.msgOutBuf) > 0 {
		msg := c.msgOutBuf[0]
		c.msgOutBuf = c.msgOutBuf[1:]
		c.flitsToSend = append(c.flitsToSend, c.msgToFlits(msg)...)
		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) msgToFlits(msg sim.Msg) []*messaging.Flit {
	numFlit := 1
	if msg.Meta().TrafficBytes > 0 {
		numFlit = int(math.Ceil(
			float64(msg.Meta().TrafficBytes) * (1 + c.encodingOverhead) /
				float64(c.flitByteSize)))
	}

	route, multicast := c.routeTable.RouteOf(msg.Meta().Dst)
	vc := c.pickVC()

	flits := make([]*messaging.Flit, numFlit)
	for i := 0; i < numFlit; i++ {
		flits[i] = messaging.FlitBuilder{}.
			WithType(flitTypeOf(i, numFlit)).
			WithVC(vc).
			WithSeqID(i).
			WithNumFlitInMsg(numFlit).
			WithRoute(route).
			WithMulticast(multicast).
			WithMsg(msg).
			Build()
	}

	return flits
}

func flitTypeOf(seqID, numFlit int) messaging.FlitType {
	switch {
	case numFlit == 1:
		return messaging.SingleFlit
	case seqID == 0:
		return messaging.HeadFlit
	case seqID == numFlit-1:
		return messaging.TailFlit
	}

	return messaging.BodyFlit
}

// pickVC spreads packets over the virtual channels round-robin.
func (c *Comp) pickVC() int {
	vc := c.nextVC
	c.nextVC = (c.nextVC + 1) % c.numVCs

	return vc
}

// recv consumes the flits that the router delivered and books the credits
// to return.
func (c *Comp) recv() bool {
	received := c.NetworkPort.PeekIncoming()
	if received == nil {
		return false
	}

	flit := received.(*messaging.Flit)
	msg := flit.Msg

	assemblingElem := c.assemblingMsgTable[msg.Meta().ID]
	if assemblingElem == nil {
		assemblingElem = c.assemblingMsgs.PushBack(&msgToAssemble{
			msg:             msg,
			numFlitRequired: flit.NumFlitInMsg,
			multicast:       flit.Multicast,
		})
		c.assemblingMsgTable[msg.Meta().ID] = assemblingElem
	}

	assembling := assemblingElem.Value.(*msgToAssemble)
	assembling.numFlitArrived++

	c.NetworkPort.RetrieveIncoming()
	c.creditsToReturn[flit.VC]++

	return true
}

// assemble completes the messages whose flits have all arrived.
func (c *Comp) assemble() bool {
	madeProgress := false

	for e := c.assemblingMsgs.Front(); e != nil; {
		next := e.Next()

		assembling := e.Value.(*msgToAssemble)
		if assembling.numFlitArrived >= assembling.numFlitRequired {
			c.assembledMsgs = append(c.assembledMsgs, assembling)
			c.assemblingMsgs.Remove(e)
			delete(c.assemblingMsgTable, assembling.msg.Meta().ID)
			madeProgress = true
		}

		e = next
	}

	return madeProgress
}

// tryDeliver pushes the fully assembled messages into their destination
// device ports.
func (c *Comp) tryDeliver() bool {
	madeProgress := false

	for len(c.assembledMsgs) > 0 {
		assembled := c.assembledMsgs[0]
		msg := assembled.msg

		port := c.deliveryPortOf(assembled)
		if err := port.Deliver(msg); err != nil {
			break
		}

		c.assembledMsgs = c.assembledMsgs[1:]
		madeProgress = true
	}

	return madeProgress
}

// deliveryPortOf finds the device port that consumes the message. Multicast
// messages are addressed to a group name and land on the local subscriber.
func (c *Comp) deliveryPortOf(assembled *msgToAssemble) sim.Port {
	dst := assembled.msg.Meta().Dst

	if assembled.multicast {
		port, found := c.groupPorts[dst]
		if !found {
			panic(fmt.Sprintf("%s: no subscriber for group %s", c.Name(), dst))
		}

		return port
	}

	for _, port := range c.DevicePorts {
		if port.AsRemote() == dst {
			return port
		}
	}

	panic(fmt.Sprintf("%s: no device port %s", c.Name(), dst))
}

// receiveCredits tops up the send credits that the router returns.
func (c *Comp) receiveCredits() bool {
	madeProgress := false

	for {
		msg := c.CreditPort.PeekIncoming()
		if msg == nil {
			break
		}

		credit := msg.(*messaging.Credit)
		if c.credits[credit.VC] >= c.initCredits {
			panic(fmt.Sprintf("%s: credit counter for vc %d beyond capacity",
				c.Name(), credit.VC))
		}

		c.credits[credit.VC]++
		c.CreditPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

// returnCredits sends at most one owed credit per VC per cycle back to the
// router.
func (c *Comp) returnCredits() bool {
	madeProgress := false

	for vc := range c.creditsToReturn {
		if c.creditsToReturn[vc] == 0 {
			continue
		}

		credit := messaging.MakeCredit(
			c.CreditPort.AsRemote(), c.creditRemote, vc)

		if err := c.CreditPort.Send(credit); err != nil {
			continue
		}

		c.creditsToReturn[vc]--
		madeProgress = true
	}

	return madeProgress
}

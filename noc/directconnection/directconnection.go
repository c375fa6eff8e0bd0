// Package directconnection provides a latency-free connection that delivers
// messages between any of its plugged-in ports.
package directconnection

import "github.com/sarchlab/wormnet/sim"

// Comp is a DirectConnection that connects components without latency.
type Comp struct {
	*sim.TickingComponent

	ports      []sim.Port
	portByName map[sim.RemotePort]sim.Port
	nextPortID int
}

// PlugIn marks the port as connected to this DirectConnection.
func (c *Comp) PlugIn(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	c.ports = append(c.ports, port)
	c.portByName[port.AsRemote()] = port

	port.SetConnection(c)
}

// Unplug marks the port as no longer connected to this DirectConnection.
func (c *Comp) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port to notify that the connection can
// deliver to the port again.
func (c *Comp) NotifyAvailable(p sim.Port) {
	for _, port := range c.ports {
		if port == p {
			continue
		}

		port.NotifyAvailable()
	}

	c.TickNow()
}

// NotifySend is called by a port to notify that the connection can start to
// tick now.
func (c *Comp) NotifySend() {
	c.TickNow()
}

// Tick delivers the pending messages of each port, rotating the port that is
// served first.
func (c *Comp) Tick() bool {
	madeProgress := false

	for i := 0; i < len(c.ports); i++ {
		portID := (i + c.nextPortID) % len(c.ports)
		port := c.ports[portID]
		madeProgress = c.forwardMany(port) || madeProgress
	}

	c.nextPortID = (c.nextPortID + 1) % len(c.ports)

	return madeProgress
}

func (c *Comp) forwardMany(port sim.Port) bool {
	madeProgress := false

	for {
		head := port.PeekOutgoing()
		if head == nil {
			break
		}

		dstPort, found := c.portByName[head.Meta().Dst]
		if !found {
			panic("destination port is not connected")
		}

		if err := dstPort.Deliver(head); err != nil {
			break
		}

		port.RetrieveOutgoing()
		madeProgress = true
	}

	return madeProgress
}

package router

import "github.com/sarchlab/wormnet/sim"

// PortAdder can add ports to a router. Each router port is a pair of a data
// port, carrying flits, and a credit port, carrying credits in both
// directions: inbound credits free space downstream of the paired output,
// outbound credits free space in this port's input buffers.
type PortAdder struct {
	router *Comp

	dataLocal    sim.Port
	dataRemote   sim.RemotePort
	creditLocal  sim.Port
	creditRemote sim.RemotePort
}

// MakePortAdder creates a PortAdder for the given router.
func MakePortAdder(r *Comp) PortAdder {
	return PortAdder{router: r}
}

// WithDataPorts sets the local data port and the remote data port it links
// to.
func (a PortAdder) WithDataPorts(
	local sim.Port,
	remote sim.RemotePort,
) PortAdder {
	a.dataLocal = local
	a.dataRemote = remote
	return a
}

// WithCreditPorts sets the local credit port and the remote credit port it
// links to.
func (a PortAdder) WithCreditPorts(
	local sim.Port,
	remote sim.RemotePort,
) PortAdder {
	a.creditLocal = local
	a.creditRemote = remote
	return a
}

// AddPort adds the port pair to the router and returns the port index.
func (a PortAdder) AddPort() int {
	a.portsMustBeGiven()

	r := a.router
	if r.outArbiters != nil {
		panic("cannot add ports after the router started ticking")
	}

	index := len(r.inputs)

	r.inputs = append(r.inputs, newInputUnit(
		a.dataLocal, a.creditLocal, a.creditRemote,
		r.numVCs, r.bufDepth))
	r.outputs = append(r.outputs, newOutputUnit(
		a.dataLocal, a.dataRemote,
		r.numVCs, r.bufDepth))

	r.AddPort(a.dataLocal.Name(), a.dataLocal)
	r.AddPort(a.creditLocal.Name(), a.creditLocal)

	return index
}

func (a PortAdder) portsMustBeGiven() {
	if a.dataLocal == nil || a.dataRemote == "" {
		panic("router port requires the local and remote data ports")
	}

	if a.creditLocal == nil || a.creditRemote == "" {
		panic("router port requires the local and remote credit ports")
	}
}

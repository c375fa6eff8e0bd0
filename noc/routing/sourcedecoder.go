package routing

// SourceDecoder decodes hop-consumable source routes. The low bits of the
// route payload describe this hop: a one-hot field over the local ports,
// followed by the index of the remote port to continue on. The consumed hop
// is shifted out of the payload that is forwarded.
type SourceDecoder struct {
	numLocalPorts  int
	numRemotePorts int
	remoteIdxWidth int
}

// NewSourceDecoder creates a SourceDecoder for a router with the given port
// counts.
func NewSourceDecoder(numLocalPorts, numRemotePorts int) *SourceDecoder {
	if numLocalPorts <= 0 {
		panic("source decoder requires at least one local port")
	}

	return &SourceDecoder{
		numLocalPorts:  numLocalPorts,
		numRemotePorts: numRemotePorts,
		remoteIdxWidth: WidthOf(numRemotePorts),
	}
}

// HopWidth returns the number of route payload bits each hop consumes.
func (d *SourceDecoder) HopWidth() int {
	return d.numLocalPorts + d.remoteIdxWidth
}

// Decode splits the current hop out of the route payload. The remote port
// bit is only raised while the remaining route is non-zero; an all-zero
// remainder means the packet terminates at this router's local ports.
func (d *SourceDecoder) Decode(route uint64, multicast bool) Decision {
	hop := route & Mask(d.HopWidth())
	next := route >> d.HopWidth()

	localBits := hop & Mask(d.numLocalPorts)
	remoteIdx := hop >> d.numLocalPorts

	destPorts := localBits
	remoteRoutes := make(map[int]uint64)
	if next != 0 {
		remotePort := d.numLocalPorts + int(remoteIdx)
		destPorts |= OneHot(remotePort)
		remoteRoutes[remotePort] = next
	}

	return Decision{
		DestPorts: destPorts,
		Multicast: multicast,
		NextRoute: next,
		// Source-routed multicast only fans out locally. Every local copy
		// terminates here, and the remote copy continues on the remaining
		// route.
		NextRouteLocal: 0,
		RemoteRoutes:   remoteRoutes,
		LocalPorts:     localBits,
	}
}

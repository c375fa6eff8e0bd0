package routing

// A Decision is the outcome of decoding one head flit.
type Decision struct {
	// DestPorts is the bitmap of the output ports the packet must be
	// forwarded to. Exactly one bit for unicast, any subset for multicast.
	DestPorts uint64

	// Multicast marks that the packet must reach every port in DestPorts in
	// the same cycle.
	Multicast bool

	// NextRoute is the route payload to forward on unicast and
	// source-routed packets.
	NextRoute uint64

	// NextRouteLocal and RemoteRoutes are the narrowed route payloads for
	// multicast forwarding. An output listed in LocalPorts forwards
	// NextRouteLocal; every other granted output forwards its own entry in
	// RemoteRoutes, which names only the destinations reached through that
	// output.
	NextRouteLocal uint64
	RemoteRoutes   map[int]uint64

	// LocalPorts is the subset of DestPorts reached through the local
	// hierarchy.
	LocalPorts uint64
}

// ForwardRoute returns the route payload that the given output port must
// carry past this hop.
func (d Decision) ForwardRoute(outputPort int) uint64 {
	if !d.Multicast {
		return d.NextRoute
	}

	if d.LocalPorts&OneHot(outputPort) != 0 {
		return d.NextRouteLocal
	}

	return d.RemoteRoutes[outputPort]
}

// A Decoder turns the route payload of a head flit into a Decision. Decoders
// keep no per-packet state, so one decoder can serve every input of a
// router.
type Decoder interface {
	Decode(route uint64, multicast bool) Decision
}

// Package fabric assembles routers, endpoints, and channels into a network.
// Routers form the upper hierarchy level: every router links to every other
// router, and the endpoints attached to a router form its local hierarchy.
// The connector derives the two-level lookup tables and the endpoint route
// tables from the topology.
package fabric

import (
	"fmt"

	"github.com/sarchlab/wormnet/noc/directconnection"
	"github.com/sarchlab/wormnet/noc/endpoint"
	"github.com/sarchlab/wormnet/noc/messaging"
	"github.com/sarchlab/wormnet/noc/router"
	"github.com/sarchlab/wormnet/noc/routing"
	"github.com/sarchlab/wormnet/sim"
)

type endpointInfo struct {
	routerID int
	localIdx int
	devPorts []sim.Port
	endpoint *endpoint.Comp
}

type routerInfo struct {
	endpoints []*endpointInfo
}

type groupInfo struct {
	name    sim.RemotePort
	members []sim.Port
}

// Connector can help assemble networks.
type Connector struct {
	name   string
	engine sim.Engine
	freq   sim.Freq

	numVCs         int
	bufDepth       int
	maxPacketSize  int
	flitByteSize   int
	channelLatency int

	routers    []*routerInfo
	endpoints  []*endpointInfo
	routerComp []*router.Comp
	groups     []groupInfo

	routeTable  endpoint.MapRouteTable
	groupRoutes map[sim.RemotePort]uint64

	maxLocal int
}

// NewConnector creates a Connector with default parameters.
func NewConnector() *Connector {
	return &Connector{
		numVCs:         1,
		bufDepth:       4,
		maxPacketSize:  4,
		flitByteSize:   32,
		channelLatency: 1,
		routeTable:     make(endpoint.MapRouteTable),
		groupRoutes:    make(map[sim.RemotePort]uint64),
	}
}

// WithEngine sets the engine that the network components use.
func (c *Connector) WithEngine(engine sim.Engine) *Connector {
	c.engine = engine
	return c
}

// WithFreq sets the frequency of the network components.
func (c *Connector) WithFreq(freq sim.Freq) *Connector {
	c.freq = freq
	return c
}

// WithNumVCs sets the number of virtual channels on every link.
func (c *Connector) WithNumVCs(n int) *Connector {
	c.numVCs = n
	return c
}

// WithBufDepth sets the per-VC buffer depth of every router input.
func (c *Connector) WithBufDepth(depth int) *Connector {
	c.bufDepth = depth
	return c
}

// WithMaxPacketSize sets the largest number of flits in a packet.
func (c *Connector) WithMaxPacketSize(n int) *Connector {
	c.maxPacketSize = n
	return c
}

// WithFlitByteSize sets the number of bytes a flit carries.
func (c *Connector) WithFlitByteSize(n int) *Connector {
	c.flitByteSize = n
	return c
}

// WithChannelLatency sets the number of cycles a flit spends on a link. A
// latency of 0 replaces the pipelined channels with direct connections.
func (c *Connector) WithChannelLatency(cycles int) *Connector {
	c.channelLatency = cycles
	return c
}

// CreateNetwork names the network to build.
func (c *Connector) CreateNetwork(name string) {
	sim.NameMustBeValid(name)
	c.name = name
}

// AddRouter adds a router to the network and returns its hierarchy
// identity.
func (c *Connector) AddRouter() int {
	c.routers = append(c.routers, &routerInfo{})

	return len(c.routers) - 1
}

// AddEndpoint attaches the device ports to the network through a new
// endpoint on the given router. It returns the endpoint index within the
// network.
func (c *Connector) AddEndpoint(routerID int, devPorts []sim.Port) int {
	r := c.routers[routerID]

	info := &endpointInfo{
		routerID: routerID,
		localIdx: len(r.endpoints),
		devPorts: devPorts,
	}
	r.endpoints = append(r.endpoints, info)
	c.endpoints = append(c.endpoints, info)

	return len(c.endpoints) - 1
}

// DefineGroup names a multicast group. The member device ports, which may
// live on different endpoints, all receive the messages addressed to the
// group name. It must be called before EstablishNetwork.
func (c *Connector) DefineGroup(name sim.RemotePort, members []sim.Port) {
	c.groups = append(c.groups, groupInfo{name: name, members: members})
}

// EstablishNetwork builds the routers, the endpoints, and the channels, and
// loads the route tables. It must be called after all the routers and
// endpoints are added.
func (c *Connector) EstablishNetwork() {
	c.mustBeReadyToEstablish()

	c.maxLocal = c.maxEndpointsPerRouter()

	c.buildRouteTable()
	c.buildGroupRoutes()
	c.buildRouters()
	c.buildEndpoints()
	c.subscribeGroups()
	c.connectRouters()
}

// LocalFieldWidth returns the number of local-hierarchy bits in a multicast
// route payload.
func (c *Connector) LocalFieldWidth() int {
	return c.maxLocal
}

// UnicastRoute returns the route payload that reaches the given endpoint.
func (c *Connector) UnicastRoute(endpointID int) uint64 {
	info := c.endpoints[endpointID]
	localIdxWidth := routing.WidthOf(c.maxLocal)

	return uint64(info.routerID)<<localIdxWidth | uint64(info.localIdx)
}

// MulticastRoute returns the multicast route payload that reaches all the
// given endpoints. Multicast fans out as one remote hop plus local
// deliveries, so all the endpoints must share one local-index set.
func (c *Connector) MulticastRoute(endpointIDs []int) uint64 {
	var localField, upperField uint64

	for _, id := range endpointIDs {
		info := c.endpoints[id]
		localField |= routing.OneHot(info.localIdx)
		upperField |= routing.OneHot(info.routerID)
	}

	return upperField<<c.maxLocal | localField
}

// Router returns the router with the given hierarchy identity.
func (c *Connector) Router(routerID int) *router.Comp {
	return c.routerComp[routerID]
}

// Endpoint returns the endpoint with the given index.
func (c *Connector) Endpoint(endpointID int) *endpoint.Comp {
	return c.endpoints[endpointID].endpoint
}

func (c *Connector) maxEndpointsPerRouter() int {
	max := 1
	for _, r := range c.routers {
		if len(r.endpoints) > max {
			max = len(r.endpoints)
		}
	}

	return max
}

func (c *Connector) buildRouteTable() {
	localIdxWidth := routing.WidthOf(c.maxLocal)

	for _, info := range c.endpoints {
		route := uint64(info.routerID)<<localIdxWidth |
			uint64(info.localIdx)

		for _, port := range info.devPorts {
			c.routeTable[port.AsRemote()] = route
		}
	}
}

func (c *Connector) buildGroupRoutes() {
	for _, g := range c.groups {
		var memberIDs []int
		for _, port := range g.members {
			memberIDs = append(memberIDs, c.endpointOfPort(port))
		}

		c.groupRoutes[g.name] = c.MulticastRoute(memberIDs)
	}
}

func (c *Connector) subscribeGroups() {
	for _, g := range c.groups {
		for _, port := range g.members {
			ep := c.endpoints[c.endpointOfPort(port)].endpoint
			ep.Subscribe(g.name, port)
		}
	}
}

func (c *Connector) endpointOfPort(port sim.Port) int {
	for id, info := range c.endpoints {
		for _, p := range info.devPorts {
			if p == port {
				return id
			}
		}
	}

	panic(fmt.Sprintf("port %s is not attached to the network", port.Name()))
}

func (c *Connector) buildRouters() {
	numRouters := len(c.routers)

	for rid, rInfo := range c.routers {
		localTable := routing.NewTable(c.maxLocal)
		for _, epInfo := range rInfo.endpoints {
			localTable.DefineRoute(
				uint64(epInfo.localIdx), routing.OneHot(epInfo.localIdx))
		}

		upperTable := routing.NewTable(numRouters)
		for other := 0; other < numRouters; other++ {
			if other == rid {
				continue
			}

			upperTable.DefineRoute(uint64(other),
				routing.OneHot(c.remotePortIndex(rid, other)))
		}

		decoder := routing.MakeTableDecoderBuilder().
			WithRouterID(uint64(rid)).
			WithLocalTable(localTable).
			WithUpperTable(upperTable).
			Build()

		r := router.MakeBuilder().
			WithEngine(c.engine).
			WithFreq(c.freq).
			WithNumVCs(c.numVCs).
			WithBufDepth(c.bufDepth).
			WithMaxPacketSize(c.maxPacketSize).
			WithDecoder(decoder).
			Build(fmt.Sprintf("%s.Router[%d]", c.name, rid))

		c.routerComp = append(c.routerComp, r)
	}
}

// remotePortIndex returns, on router rid, the port index of the link toward
// router other. Local (endpoint) ports occupy indices 0..maxLocal-1; remote
// links follow in target-router order, skipping rid itself.
func (c *Connector) remotePortIndex(rid, other int) int {
	index := c.maxLocal
	for s := 0; s < len(c.routers); s++ {
		if s == rid {
			continue
		}

		if s == other {
			return index
		}

		index++
	}

	panic("no link between the routers")
}

func (c *Connector) buildEndpoints() {
	for _, rInfo := range c.routers {
		for _, epInfo := range rInfo.endpoints {
			c.buildEndpoint(epInfo)
		}
	}
}

func (c *Connector) buildEndpoint(info *endpointInfo) {
	r := c.routerComp[info.routerID]
	epName := fmt.Sprintf("%s.Endpoint[%d].%d",
		c.name, info.routerID, info.localIdx)

	dataName := fmt.Sprintf("%s.Port[%d]", r.Name(), info.localIdx)
	creditName := fmt.Sprintf("%s.CreditPort[%d]", r.Name(), info.localIdx)

	routeTable := endpoint.MulticastRouteTable{
		Unicast: c.routeTable,
		Groups:  c.groupRoutes,
	}

	ep := endpoint.MakeBuilder().
		WithEngine(c.engine).
		WithFreq(c.freq).
		WithNumVCs(c.numVCs).
		WithInitCredits(c.bufDepth).
		WithFlitByteSize(c.flitByteSize).
		WithRouteTable(routeTable).
		WithNetworkRemote(sim.RemotePort(dataName)).
		WithCreditRemote(sim.RemotePort(creditName)).
		Build(epName)

	for _, port := range info.devPorts {
		ep.PlugIn(port)
	}

	dataPort := sim.NewPort(r, 1, 1, dataName)
	creditPort := sim.NewPort(r, c.numVCs, c.numVCs, creditName)

	router.MakePortAdder(r).
		WithDataPorts(dataPort, ep.NetworkPort.AsRemote()).
		WithCreditPorts(creditPort, ep.CreditPort.AsRemote()).
		AddPort()

	c.connect(ep.NetworkPort, dataPort,
		fmt.Sprintf("%s.DataChan", epName))
	c.connect(ep.CreditPort, creditPort,
		fmt.Sprintf("%s.CreditChan", epName))

	info.endpoint = ep
}

func (c *Connector) connectRouters() {
	for rid := range c.routers {
		// Pad the local port range so that every router's remote links start
		// at the same index.
		for idx := len(c.routers[rid].endpoints); idx < c.maxLocal; idx++ {
			c.addUnusedLocalPort(rid, idx)
		}
	}

	for a := 0; a < len(c.routers); a++ {
		for b := a + 1; b < len(c.routers); b++ {
			c.linkRouters(a, b)
		}
	}
}

// addUnusedLocalPort keeps the router port indices aligned with the table
// layout when routers host different endpoint counts.
func (c *Connector) addUnusedLocalPort(rid, idx int) {
	r := c.routerComp[rid]

	dataPort := sim.NewPort(r, 1, 1,
		fmt.Sprintf("%s.Port[%d]", r.Name(), idx))
	creditPort := sim.NewPort(r, c.numVCs, c.numVCs,
		fmt.Sprintf("%s.CreditPort[%d]", r.Name(), idx))

	router.MakePortAdder(r).
		WithDataPorts(dataPort, sim.RemotePort(dataPort.Name()+"X")).
		WithCreditPorts(creditPort, sim.RemotePort(creditPort.Name()+"X")).
		AddPort()
}

func (c *Connector) linkRouters(a, b int) {
	ra := c.routerComp[a]
	rb := c.routerComp[b]

	aIdx := c.remotePortIndex(a, b)
	bIdx := c.remotePortIndex(b, a)

	aData := sim.NewPort(ra, 1, 1,
		fmt.Sprintf("%s.Port[%d]", ra.Name(), aIdx))
	aCredit := sim.NewPort(ra, c.numVCs, c.numVCs,
		fmt.Sprintf("%s.CreditPort[%d]", ra.Name(), aIdx))
	bData := sim.NewPort(rb, 1, 1,
		fmt.Sprintf("%s.Port[%d]", rb.Name(), bIdx))
	bCredit := sim.NewPort(rb, c.numVCs, c.numVCs,
		fmt.Sprintf("%s.CreditPort[%d]", rb.Name(), bIdx))

	router.MakePortAdder(ra).
		WithDataPorts(aData, bData.AsRemote()).
		WithCreditPorts(aCredit, bCredit.AsRemote()).
		AddPort()
	router.MakePortAdder(rb).
		WithDataPorts(bData, aData.AsRemote()).
		WithCreditPorts(bCredit, aCredit.AsRemote()).
		AddPort()

	c.connect(aData, bData,
		fmt.Sprintf("%s.DataChan[%d][%d]", c.name, a, b))
	c.connect(aCredit, bCredit,
		fmt.Sprintf("%s.CreditChan[%d][%d]", c.name, a, b))
}

func (c *Connector) connect(left, right sim.Port, name string) {
	if c.channelLatency == 0 {
		conn := directconnection.MakeBuilder().
			WithEngine(c.engine).
			WithFreq(c.freq).
			Build(name)

		conn.PlugIn(left)
		conn.PlugIn(right)

		return
	}

	channel := messaging.MakeChannelBuilder().
		WithEngine(c.engine).
		WithFreq(c.freq).
		WithPipelineParameters(c.channelLatency, 1, 1).
		Build(name)

	channel.PlugIn(left)
	channel.PlugIn(right)
}

func (c *Connector) mustBeReadyToEstablish() {
	if c.name == "" {
		panic("call CreateNetwork before EstablishNetwork")
	}

	if c.engine == nil {
		panic("the connector requires an engine")
	}

	if c.freq == 0 {
		panic("the network frequency cannot be 0")
	}

	if len(c.routers) == 0 {
		panic("the network requires at least one router")
	}
}

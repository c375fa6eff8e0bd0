package endpoint

import (
	"container/list"

	"github.com/sarchlab/wormnet/sim"
)

// Builder can help building endpoints.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	numVCs           int
	initCredits      int
	flitByteSize     int
	encodingOverhead float64

	routeTable    RouteTable
	networkRemote sim.RemotePort
	creditRemote  sim.RemotePort
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numVCs:           1,
		initCredits:      2,
		flitByteSize:     32,
		encodingOverhead: 0.0,
	}
}

// WithEngine sets the engine of the endpoint to build.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the endpoint to build.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumVCs sets the number of virtual channels of the attached router
// port.
func (b Builder) WithNumVCs(n int) Builder {
	b.numVCs = n
	return b
}

// WithInitCredits sets the per-VC buffer depth of the attached router input,
// which is the number of credits the endpoint starts with.
func (b Builder) WithInitCredits(n int) Builder {
	b.initCredits = n
	return b
}

// WithFlitByteSize sets the number of bytes a flit carries.
func (b Builder) WithFlitByteSize(n int) Builder {
	b.flitByteSize = n
	return b
}

// WithEncodingOverhead sets the fraction of the link bandwidth spent on
// encoding.
func (b Builder) WithEncodingOverhead(overhead float64) Builder {
	b.encodingOverhead = overhead
	return b
}

// WithRouteTable sets the table that maps message destinations to route
// payloads.
func (b Builder) WithRouteTable(t RouteTable) Builder {
	b.routeTable = t
	return b
}

// WithNetworkRemote sets the router data port that the endpoint links to.
func (b Builder) WithNetworkRemote(remote sim.RemotePort) Builder {
	b.networkRemote = remote
	return b
}

// WithCreditRemote sets the router credit port that the endpoint links to.
func (b Builder) WithCreditRemote(remote sim.RemotePort) Builder {
	b.creditRemote = remote
	return b
}

// Build creates a new endpoint.
func (b Builder) Build(name string) *Comp {
	b.paramsMustBeValid()

	c := &Comp{
		routeTable:       b.routeTable,
		numVCs:           b.numVCs,
		initCredits:      b.initCredits,
		flitByteSize:     b.flitByteSize,
		encodingOverhead: b.encodingOverhead,
		networkRemote:    b.networkRemote,
		creditRemote:     b.creditRemote,

		assemblingMsgTable: make(map[string]*list.Element),
		assemblingMsgs:     list.New(),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	for vc := 0; vc < b.numVCs; vc++ {
		c.credits = append(c.credits, b.initCredits)
		c.creditsToReturn = append(c.creditsToReturn, 0)
	}

	c.NetworkPort = sim.NewPort(c, 1, 1, name+".NetworkPort")
	c.CreditPort = sim.NewPort(c, b.numVCs, b.numVCs, name+".CreditPort")
	c.AddPort(c.NetworkPort.Name(), c.NetworkPort)
	c.AddPort(c.CreditPort.Name(), c.CreditPort)

	return c
}

func (b Builder) paramsMustBeValid() {
	if b.engine == nil {
		panic("endpoint requires an engine to operate")
	}

	if b.freq == 0 {
		panic("endpoint frequency cannot be 0")
	}

	if b.routeTable == nil {
		panic("endpoint requires a route table to operate")
	}

	if b.flitByteSize <= 0 {
		panic("flit byte size must be positive")
	}

	if b.numVCs <= 0 {
		panic("the number of virtual channels must be positive")
	}

	if b.initCredits <= 0 {
		panic("the initial credit count must be positive")
	}
}

package router

import (
	"github.com/sarchlab/wormnet/noc/routing"
	"github.com/sarchlab/wormnet/sim"
)

// Builder can help building routers.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	numVCs        int
	bufDepth      int
	maxPacketSize int

	decoder         routing.Decoder
	bufferedOutputs bool
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numVCs:        1,
		bufDepth:      2,
		maxPacketSize: 1,
	}
}

// WithEngine sets the engine that the router uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the router works at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithNumVCs sets the number of virtual channels per port.
func (b Builder) WithNumVCs(n int) Builder {
	b.numVCs = n
	return b
}

// WithBufDepth sets the per-VC input buffer depth. The downstream credit
// counters are initialized to this value.
func (b Builder) WithBufDepth(depth int) Builder {
	b.bufDepth = depth
	return b
}

// WithMaxPacketSize sets the largest number of flits in a packet. Multicast
// head flits are only granted when every requested output holds this many
// credits.
func (b Builder) WithMaxPacketSize(n int) Builder {
	b.maxPacketSize = n
	return b
}

// WithDecoder sets the route decoder that the router uses.
func (b Builder) WithDecoder(d routing.Decoder) Builder {
	b.decoder = d
	return b
}

// WithBufferedOutputs switches the router to the non-credit variant, where
// an output is available as long as its staging register and link buffer
// absorb the flit.
func (b Builder) WithBufferedOutputs() Builder {
	b.bufferedOutputs = true
	return b
}

// Build creates a new router.
func (b Builder) Build(name string) *Comp {
	b.paramsMustBeValid()

	c := &Comp{
		numVCs:   b.numVCs,
		bufDepth: b.bufDepth,
		decoder:  b.decoder,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	if b.bufferedOutputs {
		c.flowCtrl = bufferedFlowControl{}
	} else {
		c.flowCtrl = creditFlowControl{
			bufDepth:      b.bufDepth,
			maxPacketSize: b.maxPacketSize,
		}
	}

	return c
}

func (b Builder) paramsMustBeValid() {
	if b.engine == nil {
		panic("router requires an engine to operate")
	}

	if b.freq == 0 {
		panic("router frequency cannot be 0")
	}

	if b.decoder == nil {
		panic("router requires a route decoder to operate")
	}

	if b.numVCs <= 0 || b.numVCs > 64 {
		panic("the number of virtual channels must be in 1..64")
	}

	if b.bufDepth <= 0 {
		panic("the per-VC buffer depth must be positive")
	}

	if b.maxPacketSize <= 0 || b.maxPacketSize > b.bufDepth {
		panic("the maximum packet size must be in 1..bufDepth")
	}
}

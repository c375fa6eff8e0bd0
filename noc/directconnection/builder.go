package directconnection

import "github.com/sarchlab/wormnet/sim"

// Builder can help building DirectConnections.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that the connection uses.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithFreq sets the frequency that the connection delivers at.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// Build creates a new DirectConnection.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		portByName: make(map[sim.RemotePort]sim.Port),
	}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)

	return c
}

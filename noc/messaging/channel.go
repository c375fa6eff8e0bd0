package messaging

import (
	"fmt"

	"github.com/sarchlab/wormnet/pipelining"
	"github.com/sarchlab/wormnet/sim"
)

type msgPipeTask struct {
	msg sim.Msg
}

func (t msgPipeTask) TaskID() string {
	return t.msg.Meta().ID + "_channel"
}

type channelEnd struct {
	port            sim.Port
	pipeline        pipelining.Pipeline
	postPipelineBuf sim.Buffer
}

// A Channel is a point-to-point link between two ports. Messages cross the
// channel through a fixed-latency pipeline, one pipeline per direction.
type Channel struct {
	*sim.TickingComponent

	left, right *channelEnd
}

// PlugIn connects a port to the channel. A channel accepts exactly two
// ports: the first PlugIn call attaches the left end, the second the right
// end.
func (c *Channel) PlugIn(port sim.Port) {
	c.Lock()
	defer c.Unlock()

	switch {
	case c.left.port == nil:
		c.left.port = port
	case c.right.port == nil:
		c.right.port = port
	default:
		panic("channel already has two ports plugged in")
	}

	port.SetConnection(c)
}

// Unplug detaches a port from the channel.
func (c *Channel) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port to notify that the port can receive
// messages again.
func (c *Channel) NotifyAvailable(_ sim.Port) {
	c.TickNow()
}

// NotifySend is called by a port to notify that messages are waiting in the
// port's outgoing buffer.
func (c *Channel) NotifySend() {
	c.TickNow()
}

// Tick moves messages across the channel.
func (c *Channel) Tick() bool {
	madeProgress := false

	madeProgress = c.deliver(c.left) || madeProgress
	madeProgress = c.deliver(c.right) || madeProgress
	madeProgress = c.left.pipeline.Tick() || madeProgress
	madeProgress = c.right.pipeline.Tick() || madeProgress
	madeProgress = c.accept(c.left) || madeProgress
	madeProgress = c.accept(c.right) || madeProgress

	return madeProgress
}

// deliver pushes the messages that finished crossing the channel into the
// destination port.
func (c *Channel) deliver(end *channelEnd) bool {
	madeProgress := false

	for {
		item := end.postPipelineBuf.Peek()
		if item == nil {
			break
		}

		msg := item.(msgPipeTask).msg
		dstPort := c.dstPort(msg)

		if err := dstPort.Deliver(msg); err != nil {
			break
		}

		end.postPipelineBuf.Pop()
		madeProgress = true
	}

	return madeProgress
}

// accept takes messages from the sending port into the pipeline.
func (c *Channel) accept(end *channelEnd) bool {
	madeProgress := false

	for {
		if end.port == nil {
			break
		}

		msg := end.port.PeekOutgoing()
		if msg == nil {
			break
		}

		if !end.pipeline.CanAccept() {
			break
		}

		end.pipeline.Accept(msgPipeTask{msg: msg})
		end.port.RetrieveOutgoing()
		madeProgress = true
	}

	return madeProgress
}

func (c *Channel) dstPort(msg sim.Msg) sim.Port {
	dst := msg.Meta().Dst

	switch {
	case c.left.port != nil && c.left.port.AsRemote() == dst:
		return c.left.port
	case c.right.port != nil && c.right.port.AsRemote() == dst:
		return c.right.port
	}

	panic(fmt.Sprintf("%s: message dst %s is not plugged into the channel",
		c.Name(), dst))
}

// ChannelBuilder can build channels.
type ChannelBuilder struct {
	engine        sim.Engine
	freq          sim.Freq
	numStage      int
	cyclePerStage int
	width         int
}

// MakeChannelBuilder creates a new ChannelBuilder.
func MakeChannelBuilder() ChannelBuilder {
	return ChannelBuilder{
		numStage:      1,
		cyclePerStage: 1,
		width:         1,
	}
}

// WithEngine sets the engine that the channel uses.
func (b ChannelBuilder) WithEngine(engine sim.Engine) ChannelBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the channel works at.
func (b ChannelBuilder) WithFreq(freq sim.Freq) ChannelBuilder {
	b.freq = freq
	return b
}

// WithPipelineParameters sets the latency (in stages), the number of cycles
// per stage, and the width of the pipelines that move messages across the
// channel.
func (b ChannelBuilder) WithPipelineParameters(
	numStage, cyclePerStage, width int,
) ChannelBuilder {
	b.numStage = numStage
	b.cyclePerStage = cyclePerStage
	b.width = width
	return b
}

// Build creates a new channel.
func (b ChannelBuilder) Build(name string) *Channel {
	sim.NameMustBeValid(name)
	b.engineMustBeGiven()
	b.freqMustNotBeZero()

	c := &Channel{}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)

	c.left = b.buildEnd(name + ".Left")
	c.right = b.buildEnd(name + ".Right")

	return c
}

func (b ChannelBuilder) buildEnd(name string) *channelEnd {
	buf := sim.NewBuffer(name+".PostPipelineBuf", b.width)
	pipeline := pipelining.MakeBuilder().
		WithNumStage(b.numStage).
		WithCyclePerStage(b.cyclePerStage).
		WithPipelineWidth(b.width).
		WithPostPipelineBuffer(buf).
		Build(name + ".Pipeline")

	return &channelEnd{
		pipeline:        pipeline,
		postPipelineBuf: buf,
	}
}

func (b ChannelBuilder) engineMustBeGiven() {
	if b.engine == nil {
		panic("channel requires an engine to operate")
	}
}

func (b ChannelBuilder) freqMustNotBeZero() {
	if b.freq == 0 {
		panic("channel frequency cannot be 0")
	}
}

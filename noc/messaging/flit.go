// Package messaging provides the message types and the link-level channel
// that connect routers and endpoints together.
package messaging

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/wormnet/sim"
)

// FlitType marks the position of a flit in its packet.
type FlitType int

// A packet is a maximal sequence Head, Body*, Tail, or one single flit.
const (
	HeadFlit FlitType = iota
	BodyFlit
	TailFlit
	SingleFlit
)

func (t FlitType) String() string {
	switch t {
	case HeadFlit:
		return "Head"
	case BodyFlit:
		return "Body"
	case TailFlit:
		return "Tail"
	case SingleFlit:
		return "Single"
	}

	return "Unknown"
}

// Flit is the smallest transfer unit on a network link.
type Flit struct {
	sim.MsgMeta

	Type         FlitType
	VC           int
	SeqID        int
	NumFlitInMsg int

	// Route is only meaningful on head and single flits. It either carries
	// the hop-consumable source route or the destination identifier that
	// routers look up in their tables. Routers rewrite this field as the
	// flit crosses them.
	Route uint64

	// Multicast marks that the Route field carries multicast destination
	// bitfields rather than a unicast destination identifier.
	Multicast bool

	// Msg is the message that the flit carries a piece of.
	Msg sim.Msg
}

// Meta returns the meta data associated with the flit.
func (f *Flit) Meta() *sim.MsgMeta {
	return &f.MsgMeta
}

// Clone returns a cloned flit with a different ID.
func (f *Flit) Clone() sim.Msg {
	cloneMsg := *f
	cloneMsg.ID = flitID(cloneMsg.SeqID, f.Msg)

	return &cloneMsg
}

// IsHead returns true if the flit opens a packet.
func (f *Flit) IsHead() bool {
	return f.Type == HeadFlit || f.Type == SingleFlit
}

// IsTail returns true if the flit closes a packet.
func (f *Flit) IsTail() bool {
	return f.Type == TailFlit || f.Type == SingleFlit
}

func flitID(seqID int, msg sim.Msg) string {
	return fmt.Sprintf("flit-%d-msg-%s-%s",
		seqID, msg.Meta().ID, sim.GetIDGenerator().Generate())
}

// FlitBuilder can build flits.
type FlitBuilder struct {
	src, dst            sim.RemotePort
	msg                 sim.Msg
	flitType            FlitType
	vc                  int
	seqID, numFlitInMsg int
	route               uint64
	multicast           bool
}

// WithSrc sets the src of the flit to build.
func (b FlitBuilder) WithSrc(src sim.RemotePort) FlitBuilder {
	b.src = src
	return b
}

// WithDst sets the dst of the flit to build.
func (b FlitBuilder) WithDst(dst sim.RemotePort) FlitBuilder {
	b.dst = dst
	return b
}

// WithType sets the type of the flit to build.
func (b FlitBuilder) WithType(t FlitType) FlitBuilder {
	b.flitType = t
	return b
}

// WithVC sets the virtual channel that the flit travels on.
func (b FlitBuilder) WithVC(vc int) FlitBuilder {
	b.vc = vc
	return b
}

// WithSeqID sets the SeqID of the flit.
func (b FlitBuilder) WithSeqID(i int) FlitBuilder {
	b.seqID = i
	return b
}

// WithNumFlitInMsg sets the number of flits in the message the flit belongs
// to.
func (b FlitBuilder) WithNumFlitInMsg(n int) FlitBuilder {
	b.numFlitInMsg = n
	return b
}

// WithRoute sets the route payload of the flit.
func (b FlitBuilder) WithRoute(route uint64) FlitBuilder {
	b.route = route
	return b
}

// WithMulticast marks the flit's route payload as multicast bitfields.
func (b FlitBuilder) WithMulticast(multicast bool) FlitBuilder {
	b.multicast = multicast
	return b
}

// WithMsg sets the msg of the flit to build.
func (b FlitBuilder) WithMsg(msg sim.Msg) FlitBuilder {
	b.msg = msg
	return b
}

// Build creates a new flit.
func (b FlitBuilder) Build() *Flit {
	f := &Flit{}
	f.ID = flitID(b.seqID, b.msg)
	f.Src = b.src
	f.Dst = b.dst
	f.Type = b.flitType
	f.VC = b.vc
	f.Msg = b.msg
	f.SeqID = b.seqID
	f.NumFlitInMsg = b.numFlitInMsg
	f.Route = b.route
	f.Multicast = b.multicast
	f.TrafficClass = reflect.TypeOf(b.msg).Elem().String()

	return f
}

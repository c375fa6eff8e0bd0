// Package trace records flit movements into a database for post-simulation
// analysis.
package trace

import (
	"github.com/sarchlab/wormnet/datarecording"
	"github.com/sarchlab/wormnet/noc/messaging"
	"github.com/sarchlab/wormnet/noc/router"
	"github.com/sarchlab/wormnet/sim"
)

// A FlitRecord is one row of the flit trace table.
type FlitRecord struct {
	Time     float64
	Router   string
	Pos      string
	MsgID    string
	FlitSeq  int
	VC       int
	FlitType string
}

// Tracer is a hook that records flit arrival, traversal, and departure at
// every router it is attached to.
type Tracer struct {
	timeTeller sim.TimeTeller
	recorder   datarecording.DataRecorder
	tableName  string
}

// NewTracer creates a Tracer that writes into the given recorder.
func NewTracer(
	timeTeller sim.TimeTeller,
	recorder datarecording.DataRecorder,
) *Tracer {
	t := &Tracer{
		timeTeller: timeTeller,
		recorder:   recorder,
		tableName:  "flit_trace",
	}

	recorder.CreateTable(t.tableName, FlitRecord{})

	return t
}

// AttachTo registers the tracer on a router.
func (t *Tracer) AttachTo(r *router.Comp) {
	r.AcceptHook(t)
}

// Func records one flit movement.
func (t *Tracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case router.HookPosFlitArrive,
		router.HookPosFlitTraverse,
		router.HookPosFlitSend:
	default:
		return
	}

	flit := ctx.Item.(*messaging.Flit)

	t.recorder.InsertData(t.tableName, FlitRecord{
		Time:     float64(t.timeTeller.CurrentTime()),
		Router:   ctx.Domain.(sim.Named).Name(),
		Pos:      ctx.Pos.Name,
		MsgID:    flit.Msg.Meta().ID,
		FlitSeq:  flit.SeqID,
		VC:       flit.VC,
		FlitType: flit.Type.String(),
	})
}

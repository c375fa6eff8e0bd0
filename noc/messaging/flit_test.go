package messaging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wormnet/sim"
)

type payloadMsg struct {
	sim.MsgMeta
}

func (m *payloadMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

func (m *payloadMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

var _ = Describe("Flit", func() {
	var msg *payloadMsg

	BeforeEach(func() {
		msg = &payloadMsg{}
		msg.ID = sim.GetIDGenerator().Generate()
	})

	It("should build a flit that carries the message", func() {
		flit := FlitBuilder{}.
			WithSrc("Left.Port").
			WithDst("Right.Port").
			WithType(HeadFlit).
			WithVC(1).
			WithSeqID(0).
			WithNumFlitInMsg(3).
			WithRoute(0b1010).
			WithMsg(msg).
			Build()

		Expect(flit.Src).To(Equal(sim.RemotePort("Left.Port")))
		Expect(flit.Dst).To(Equal(sim.RemotePort("Right.Port")))
		Expect(flit.Type).To(Equal(HeadFlit))
		Expect(flit.VC).To(Equal(1))
		Expect(flit.NumFlitInMsg).To(Equal(3))
		Expect(flit.Route).To(Equal(uint64(0b1010)))
		Expect(flit.Multicast).To(BeFalse())
		Expect(flit.Msg).To(BeIdenticalTo(sim.Msg(msg)))
		Expect(flit.TrafficClass).To(Equal("messaging.payloadMsg"))
	})

	It("should classify packet positions", func() {
		head := FlitBuilder{}.WithType(HeadFlit).WithMsg(msg).Build()
		body := FlitBuilder{}.WithType(BodyFlit).WithMsg(msg).Build()
		tail := FlitBuilder{}.WithType(TailFlit).WithMsg(msg).Build()
		single := FlitBuilder{}.WithType(SingleFlit).WithMsg(msg).Build()

		Expect(head.IsHead()).To(BeTrue())
		Expect(head.IsTail()).To(BeFalse())
		Expect(body.IsHead()).To(BeFalse())
		Expect(body.IsTail()).To(BeFalse())
		Expect(tail.IsHead()).To(BeFalse())
		Expect(tail.IsTail()).To(BeTrue())
		Expect(single.IsHead()).To(BeTrue())
		Expect(single.IsTail()).To(BeTrue())
	})

	It("should clone with a fresh ID but the same message", func() {
		flit := FlitBuilder{}.
			WithType(HeadFlit).
			WithSeqID(2).
			WithMsg(msg).
			Build()

		clone := flit.Clone().(*Flit)

		Expect(clone.ID).NotTo(Equal(flit.ID))
		Expect(clone.SeqID).To(Equal(2))
		Expect(clone.Msg).To(BeIdenticalTo(flit.Msg))
	})
})

var _ = Describe("Credit", func() {
	It("should carry the virtual channel it frees", func() {
		credit := MakeCredit("Router.CreditPort", "Peer.CreditPort", 3)

		Expect(credit.Src).To(Equal(sim.RemotePort("Router.CreditPort")))
		Expect(credit.Dst).To(Equal(sim.RemotePort("Peer.CreditPort")))
		Expect(credit.VC).To(Equal(3))
		Expect(credit.TrafficClass).To(Equal("messaging.Credit"))
	})

	It("should clone with a fresh ID", func() {
		credit := MakeCredit("A.Port", "B.Port", 0)

		clone := credit.Clone().(*Credit)

		Expect(clone.ID).NotTo(Equal(credit.ID))
		Expect(clone.VC).To(Equal(0))
	})
})

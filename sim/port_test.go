package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubConnection struct {
	HookableBase

	notifySendCount      int
	notifyAvailablePorts []Port
}

func (c *stubConnection) Name() string { return "Conn" }

func (c *stubConnection) PlugIn(port Port) {}

func (c *stubConnection) Unplug(port Port) {}

func (c *stubConnection) NotifyAvailable(port Port) {
	c.notifyAvailablePorts = append(c.notifyAvailablePorts, port)
}

func (c *stubConnection) NotifySend() {
	c.notifySendCount++
}

type stubComponent struct {
	HookableBase

	recvPorts []Port
	freePorts []Port
}

func (c *stubComponent) Name() string { return "Comp" }

func (c *stubComponent) Handle(e Event) error { return nil }

func (c *stubComponent) GetPortByName(name string) Port { return nil }

func (c *stubComponent) NotifyRecv(port Port) {
	c.recvPorts = append(c.recvPorts, port)
}

func (c *stubComponent) NotifyPortFree(port Port) {
	c.freePorts = append(c.freePorts, port)
}

type sampleMsg struct {
	meta MsgMeta
}

func (m *sampleMsg) Meta() *MsgMeta {
	return &m.meta
}

func (m *sampleMsg) Clone() Msg {
	cloneMsg := *m
	cloneMsg.meta.ID = GetIDGenerator().Generate()

	return &cloneMsg
}

func newPortMsg(src, dst RemotePort) *sampleMsg {
	msg := &sampleMsg{}
	msg.meta.ID = GetIDGenerator().Generate()
	msg.meta.Src = src
	msg.meta.Dst = dst
	return msg
}

var _ = Describe("DefaultPort", func() {
	var (
		comp *stubComponent
		conn *stubConnection
		port Port
	)

	BeforeEach(func() {
		comp = &stubComponent{}
		conn = &stubConnection{}
		port = NewPort(comp, 2, 2, "Comp.Port")
		port.SetConnection(conn)
	})

	It("should buffer outgoing messages on send", func() {
		msg := newPortMsg("Comp.Port", "AnotherComp.Port")

		err := port.Send(msg)

		Expect(err).To(BeNil())
		Expect(port.PeekOutgoing()).To(BeIdenticalTo(msg))
		Expect(conn.notifySendCount).To(Equal(1))
	})

	It("should only notify the connection when the buffer was empty", func() {
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))

		Expect(conn.notifySendCount).To(Equal(1))
	})

	It("should fail to send when the outgoing buffer is full", func() {
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))

		Expect(port.CanSend()).To(BeFalse())

		err := port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))

		Expect(err).NotTo(BeNil())
	})

	It("should panic when the src does not match the port", func() {
		Expect(func() {
			port.Send(newPortMsg("SomeoneElse.Port", "AnotherComp.Port"))
		}).To(Panic())
	})

	It("should panic when the dst is not given", func() {
		Expect(func() {
			port.Send(newPortMsg("Comp.Port", ""))
		}).To(Panic())
	})

	It("should panic when sending to itself", func() {
		Expect(func() {
			port.Send(newPortMsg("Comp.Port", "Comp.Port"))
		}).To(Panic())
	})

	It("should notify the component on delivery", func() {
		msg := newPortMsg("AnotherComp.Port", "Comp.Port")

		err := port.Deliver(msg)

		Expect(err).To(BeNil())
		Expect(comp.recvPorts).To(Equal([]Port{port}))
		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg))
	})

	It("should fail to deliver when the incoming buffer is full", func() {
		port.Deliver(newPortMsg("AnotherComp.Port", "Comp.Port"))
		port.Deliver(newPortMsg("AnotherComp.Port", "Comp.Port"))

		err := port.Deliver(newPortMsg("AnotherComp.Port", "Comp.Port"))

		Expect(err).NotTo(BeNil())
		Expect(comp.recvPorts).To(HaveLen(1))
	})

	It("should notify the connection when a full incoming buffer drains", func() {
		msg1 := newPortMsg("AnotherComp.Port", "Comp.Port")
		msg2 := newPortMsg("AnotherComp.Port", "Comp.Port")
		port.Deliver(msg1)
		port.Deliver(msg2)

		retrieved := port.RetrieveIncoming()

		Expect(retrieved).To(BeIdenticalTo(msg1))
		Expect(conn.notifyAvailablePorts).To(Equal([]Port{port}))

		port.RetrieveIncoming()

		Expect(conn.notifyAvailablePorts).To(HaveLen(1))
	})

	It("should notify the component when a full outgoing buffer drains", func() {
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))
		port.Send(newPortMsg("Comp.Port", "AnotherComp.Port"))

		port.RetrieveOutgoing()

		Expect(comp.freePorts).To(Equal([]Port{port}))
	})

	It("should return nil when retrieving from an empty port", func() {
		Expect(port.RetrieveIncoming()).To(BeNil())
		Expect(port.RetrieveOutgoing()).To(BeNil())
		Expect(port.PeekIncoming()).To(BeNil())
		Expect(port.PeekOutgoing()).To(BeNil())
	})

	It("should reject a second connection", func() {
		Expect(func() {
			port.SetConnection(&stubConnection{})
		}).To(Panic())
	})
})

// Package acceptance provides the traffic harness that network assemblies
// are validated with.
package acceptance

import (
	"log"
	"math/rand"

	"github.com/sarchlab/wormnet/sim"
)

type trafficMsg struct {
	sim.MsgMeta
}

func (m *trafficMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

func (m *trafficMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// NewTrafficMsg creates a message that the harness tracks.
func NewTrafficMsg(src, dst sim.RemotePort, bytes int) sim.Msg {
	msg := &trafficMsg{}
	msg.ID = sim.GetIDGenerator().Generate()
	msg.Src = src
	msg.Dst = dst
	msg.TrafficBytes = bytes

	return msg
}

// A delivery records the ports a message must reach and the ports it has
// reached so far.
type delivery struct {
	expected map[sim.RemotePort]bool
	received map[sim.RemotePort]bool
}

func (d *delivery) complete() bool {
	return len(d.received) == len(d.expected)
}

// Test is a test case.
type Test struct {
	agents     []*Agent
	deliveries map[sim.Msg]*delivery
	numMsgs    int
	numDone    int
}

// NewTest creates a new test.
func NewTest() *Test {
	return &Test{
		deliveries: make(map[sim.Msg]*delivery),
	}
}

// RegisterAgent adds an agent to the Test.
func (t *Test) RegisterAgent(agent *Agent) {
	t.agents = append(t.agents, agent)
}

// GenerateMsgs generates n messages from a random source port to a random
// destination port.
func (t *Test) GenerateMsgs(n uint64) {
	for i := uint64(0); i < n; i++ {
		srcAgentID := rand.Intn(len(t.agents))
		srcAgent := t.agents[srcAgentID]
		srcPort := srcAgent.AgentPorts[rand.Intn(len(srcAgent.AgentPorts))]

		dstAgentID := rand.Intn(len(t.agents))
		for dstAgentID == srcAgentID {
			dstAgentID = rand.Intn(len(t.agents))
		}

		dstAgent := t.agents[dstAgentID]
		dstPort := dstAgent.AgentPorts[rand.Intn(len(dstAgent.AgentPorts))]

		msg := NewTrafficMsg(
			srcPort.AsRemote(), dstPort.AsRemote(), rand.Intn(4096))
		srcAgent.MsgsToSend = append(srcAgent.MsgsToSend, msg)
		t.RegisterMsg(msg, dstPort.AsRemote())
	}
}

// RegisterMsg tells the harness to expect the message at the given ports. A
// single port is a unicast delivery; several ports track one multicast
// message.
func (t *Test) RegisterMsg(msg sim.Msg, dsts ...sim.RemotePort) {
	d := &delivery{
		expected: make(map[sim.RemotePort]bool),
		received: make(map[sim.RemotePort]bool),
	}
	for _, dst := range dsts {
		d.expected[dst] = true
	}

	t.deliveries[msg] = d
	t.numMsgs++
}

// receiveMsg marks that a message is received at a port.
func (t *Test) receiveMsg(msg sim.Msg, recvPort sim.Port) {
	d, found := t.deliveries[msg]
	if !found {
		panic("received a msg that was never sent")
	}

	remote := recvPort.AsRemote()
	if !d.expected[remote] {
		panic("msg delivered to a wrong destination")
	}

	if d.received[remote] {
		panic("msg is double delivered")
	}

	d.received[remote] = true
	if d.complete() {
		t.numDone++
	}
}

// MustHaveReceivedAllMsgs asserts that every registered message reached all
// its destinations.
func (t *Test) MustHaveReceivedAllMsgs() {
	if t.numDone == t.numMsgs {
		return
	}

	for msg, d := range t.deliveries {
		if d.complete() {
			continue
		}

		log.Printf("msg %s expected at %d ports, received at %d\n",
			msg.Meta().ID, len(d.expected), len(d.received))
	}

	panic("some messages are dropped")
}

// ReportBandwidthAchieved dumps the bandwidth observed by each agent.
func (t *Test) ReportBandwidthAchieved(now sim.VTimeInSec) {
	for _, a := range t.agents {
		log.Printf(
			"agent %s, send bandwidth %.2f GB/s, recv bandwidth %.2f GB/s",
			a.Name(),
			float64(a.sendBytes)/float64(now)/1e9,
			float64(a.recvBytes)/float64(now)/1e9)
	}
}

package main

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/wormnet/datarecording"
	"github.com/sarchlab/wormnet/monitoring"
	"github.com/sarchlab/wormnet/noc/acceptance"
	"github.com/sarchlab/wormnet/noc/fabric"
	"github.com/sarchlab/wormnet/noc/trace"
	"github.com/sarchlab/wormnet/sim"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// A scenario is one assembled network with its agents and harness.
type scenario struct {
	engine    sim.Engine
	connector *fabric.Connector
	agents    []*acceptance.Agent
	test      *acceptance.Test
	monitor   *monitoring.Monitor
}

// newScenario assembles a network with one agent per endpoint, spreading the
// endpoints over the given routers.
func newScenario(
	name string,
	numRouters int,
	agentsPerRouter int,
	portsPerAgent int,
) *scenario {
	rand.Seed(1)

	s := &scenario{
		engine: sim.NewSerialEngine(),
		test:   acceptance.NewTest(),
	}

	freq := 1.0 * sim.GHz

	s.connector = fabric.NewConnector().
		WithEngine(s.engine).
		WithFreq(freq).
		WithNumVCs(flagNumVCs).
		WithBufDepth(flagBufDepth).
		WithMaxPacketSize(flagBufDepth).
		WithFlitByteSize(flagFlitByteSize).
		WithChannelLatency(flagChannelLatency)
	s.connector.CreateNetwork(name)

	for r := 0; r < numRouters; r++ {
		rid := s.connector.AddRouter()

		for a := 0; a < agentsPerRouter; a++ {
			agent := acceptance.NewAgent(
				s.engine, freq,
				fmt.Sprintf("Agent%d_%d", r, a),
				portsPerAgent, s.test)
			agent.TickLater()

			s.agents = append(s.agents, agent)
			s.test.RegisterAgent(agent)
			s.connector.AddEndpoint(rid, agent.AgentPorts)
		}
	}

	return s
}

// establish finishes the assembly and attaches the optional monitor and
// tracer.
func (s *scenario) establish(numRouters int) {
	s.connector.EstablishNetwork()

	if flagMonitor {
		s.monitor = monitoring.NewMonitor()
		if flagMonitorPort != 0 {
			s.monitor.WithPortNumber(flagMonitorPort)
		}
		if flagBrowser {
			s.monitor.WithBrowser()
		}
		s.monitor.RegisterEngine(s.engine)
		for r := 0; r < numRouters; r++ {
			s.monitor.RegisterComponent(s.connector.Router(r))
		}
		s.monitor.StartServer()
	}

	if flagTraceDB != "" {
		recorder := datarecording.New(flagTraceDB)
		tracer := trace.NewTracer(s.engine, recorder)
		for r := 0; r < numRouters; r++ {
			tracer.AttachTo(s.connector.Router(r))
		}
	}
}

// run drives the simulation to completion and checks the deliveries.
func (s *scenario) run() {
	if err := s.engine.Run(); err != nil {
		panic(err)
	}

	s.test.MustHaveReceivedAllMsgs()
	s.test.ReportBandwidthAchieved(s.engine.CurrentTime())
	atexit.Exit(0)
}

var oneToOneCmd = &cobra.Command{
	Use:   "one-to-one",
	Short: "Send messages between two endpoints on one router",
	Run: func(_ *cobra.Command, _ []string) {
		s := newScenario("Net", 1, 2, 5)
		s.establish(1)

		for i := 0; i < 2000; i++ {
			src := s.agents[0].AgentPorts[rand.Intn(5)]
			dst := s.agents[1].AgentPorts[rand.Intn(5)]

			msg := acceptance.NewTrafficMsg(
				src.AsRemote(), dst.AsRemote(), rand.Intn(4096))
			s.agents[0].MsgsToSend = append(s.agents[0].MsgsToSend, msg)
			s.test.RegisterMsg(msg, dst.AsRemote())
		}

		s.run()
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Send random traffic over a multi-router network",
	Run: func(_ *cobra.Command, _ []string) {
		numRouters := 4

		s := newScenario("Net", numRouters, 3, 2)
		s.establish(numRouters)
		s.test.GenerateMsgs(10000)

		s.run()
	},
}

var multicastCmd = &cobra.Command{
	Use:   "multicast",
	Short: "Send multicast messages to a group on a star network",
	Run: func(_ *cobra.Command, _ []string) {
		s := newScenario("Net", 1, 5, 1)

		group := sim.RemotePort("Net.GroupAll")
		var members []sim.Port
		for _, agent := range s.agents[1:] {
			members = append(members, agent.AgentPorts[0])
		}
		s.connector.DefineGroup(group, members)

		s.establish(1)

		// Multicast packets must fit in the downstream buffers whole.
		maxBytes := flagFlitByteSize * flagBufDepth

		for i := 0; i < 1000; i++ {
			src := s.agents[0].AgentPorts[0]

			msg := acceptance.NewTrafficMsg(
				src.AsRemote(), group, rand.Intn(maxBytes))
			s.agents[0].MsgsToSend = append(s.agents[0].MsgsToSend, msg)

			var dsts []sim.RemotePort
			for _, m := range members {
				dsts = append(dsts, m.AsRemote())
			}
			s.test.RegisterMsg(msg, dsts...)
		}

		s.run()
	},
}

func init() {
	rootCmd.AddCommand(oneToOneCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(multicastCmd)
}

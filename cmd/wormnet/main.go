// Wormnet CLI runs traffic scenarios on router network assemblies.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wormnet",
	Short: "Wormnet runs traffic scenarios on virtual-channel router networks.",
	Long: `Wormnet assembles networks of wormhole, virtual-channel routers ` +
		`and drives them with traffic. Every scenario verifies that all the ` +
		`injected messages arrive exactly once at their destinations.`,
}

var (
	flagNumVCs         int
	flagBufDepth       int
	flagFlitByteSize   int
	flagChannelLatency int
	flagMonitor        bool
	flagMonitorPort    int
	flagBrowser        bool
	flagTraceDB        string
)

func init() {
	rootCmd.PersistentFlags().IntVar(&flagNumVCs, "num-vcs", 2,
		"number of virtual channels per link")
	rootCmd.PersistentFlags().IntVar(&flagBufDepth, "buf-depth", 4,
		"per-VC input buffer depth of the routers")
	rootCmd.PersistentFlags().IntVar(&flagFlitByteSize, "flit-byte-size", 32,
		"number of bytes a flit carries")
	rootCmd.PersistentFlags().IntVar(&flagChannelLatency, "channel-latency", 1,
		"number of cycles a flit spends on a link")
	rootCmd.PersistentFlags().BoolVar(&flagMonitor, "monitor", false,
		"start the monitoring server")
	rootCmd.PersistentFlags().IntVar(&flagMonitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 picks a random port")
	rootCmd.PersistentFlags().BoolVar(&flagBrowser, "browser", false,
		"open the monitoring dashboard in a browser")
	rootCmd.PersistentFlags().StringVar(&flagTraceDB, "trace-db", "",
		"record a flit trace into the named SQLite database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/airtimelab/wifair/experiment"
)

var (
	configPath string
	cfg        = experiment.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "wifair",
	Short: "Uplink channel-sharing fairness measurement harness",
	Long: `wifair runs a virtual-time uplink experiment in which legacy ` +
		`contention-based stations share a channel with stations served by ` +
		`scheduled multi-user access, and reports per-station throughput, ` +
		`queue occupancy, and loss counters.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	f := rootCmd.Flags()

	f.StringVar(&configPath, "config", "",
		"YAML config file; flags given on the command line override it")

	f.IntVar(&cfg.NLegacy, "nLegacy", cfg.NLegacy,
		"number of legacy contention-based stations")
	f.IntVar(&cfg.NScheduled, "nScheduled", cfg.NScheduled,
		"number of stations served by scheduled multi-user access")
	f.Float64Var(&cfg.SimTime, "simTime", cfg.SimTime,
		"measured run length in seconds")
	f.IntVar(&cfg.PayloadSize, "payloadSize", cfg.PayloadSize,
		"datagram payload size in bytes")
	f.StringVar(&cfg.LambdaList, "lambdaList", cfg.LambdaList,
		"comma separated per-station arrival rates in pkt/s;"+
			" the last entry extends to remaining stations")
	f.Float64Var(&cfg.LambdaLegacy, "lambdaLegacy", cfg.LambdaLegacy,
		"default arrival rate for legacy stations in pkt/s")
	f.Float64Var(&cfg.LambdaScheduled, "lambdaScheduled", cfg.LambdaScheduled,
		"default arrival rate for scheduled stations in pkt/s")
	f.IntVar(&cfg.APCwMin, "apCwMin", cfg.APCwMin,
		"AP minimum contention window")
	f.IntVar(&cfg.APCwMax, "apCwMax", cfg.APCwMax,
		"AP maximum contention window")
	f.BoolVar(&cfg.EnableMuAccess, "muAccess", cfg.EnableMuAccess,
		"serve scheduled stations with trigger-based multi-user access")
	f.Float64Var(&cfg.MuAccessInterval, "muAccessInterval", cfg.MuAccessInterval,
		"extra gap between trigger rounds in seconds")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed,
		"random seed")
	f.BoolVar(&cfg.LogEvents, "logEvents", cfg.LogEvents,
		"print every handled event to stderr")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		fileCfg, err := experiment.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = mergeFlags(cmd, fileCfg)
	}

	out := bufio.NewWriter(os.Stdout)
	atexit.Register(func() { out.Flush() })

	runner, err := experiment.NewRunner(cfg, out)
	if err != nil {
		return err
	}

	if err := runner.Run(); err != nil {
		return err
	}

	return out.Flush()
}

// mergeFlags layers flags the user actually set on top of the file values.
func mergeFlags(cmd *cobra.Command, file experiment.Config) experiment.Config {
	merged := file
	changed := cmd.Flags().Changed

	if changed("nLegacy") {
		merged.NLegacy = cfg.NLegacy
	}
	if changed("nScheduled") {
		merged.NScheduled = cfg.NScheduled
	}
	if changed("simTime") {
		merged.SimTime = cfg.SimTime
	}
	if changed("payloadSize") {
		merged.PayloadSize = cfg.PayloadSize
	}
	if changed("lambdaList") {
		merged.LambdaList = cfg.LambdaList
	}
	if changed("lambdaLegacy") {
		merged.LambdaLegacy = cfg.LambdaLegacy
	}
	if changed("lambdaScheduled") {
		merged.LambdaScheduled = cfg.LambdaScheduled
	}
	if changed("apCwMin") {
		merged.APCwMin = cfg.APCwMin
	}
	if changed("apCwMax") {
		merged.APCwMax = cfg.APCwMax
	}
	if changed("muAccess") {
		merged.EnableMuAccess = cfg.EnableMuAccess
	}
	if changed("muAccessInterval") {
		merged.MuAccessInterval = cfg.MuAccessInterval
	}
	if changed("seed") {
		merged.Seed = cfg.Seed
	}
	if changed("logEvents") {
		merged.LogEvents = cfg.LogEvents
	}

	return merged
}

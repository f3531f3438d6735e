package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prodline/prodline-sim/sim"
	"github.com/prodline/prodline-sim/sim/aggregate"
	"github.com/prodline/prodline-sim/sim/layout"
)

var (
	// CLI flags for the simulation run
	scenarioPath  string  // Path to the YAML scenario file
	horizon       float64 // Total simulation time (in seconds)
	seed          int64   // Seed for the run's random streams
	bucketSize    float64 // Summary bucket width (in seconds)
	contextWindow int     // Events captured around each DOWN/JAMMED event
	logLevel      string  // Log verbosity level
	debugEvents   bool    // Keep the full per-transition log in memory
	showDetail    bool    // Print the events_detail rows after the summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "prodline-sim",
	Short: "Discrete-event digital twin for multi-station production lines",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a production-line simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("No scenario file provided. Exiting simulation.")
		}

		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		graph, err := scenario.BuildGraph()
		if err != nil {
			logrus.Fatalf("Unable to resolve topology: %v", err)
		}

		logrus.Infof("Starting simulation %q: %d stations, horizon=%.0fs, seed=%d",
			scenario.Name, len(scenario.Stations), horizon, seed)

		startTime := time.Now()

		env := sim.NewEnv()
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		agg := aggregate.New(bucketSize, contextWindow, startTime)

		var telemetry sim.TelemetryGenerator
		if len(scenario.Telemetry) > 0 {
			telemetry = sim.NewConfigTelemetry(rng.ForSubsystem(sim.SubsystemTelemetry), scenario.Telemetry)
		}

		builder := &layout.Builder{
			Env:         env,
			Graph:       graph,
			Configs:     scenario.MachineConfigs(),
			Source:      scenario.Source,
			Telemetry:   telemetry,
			Observer:    agg,
			RNG:         rng.ForSubsystem(sim.SubsystemBehavior),
			DebugEvents: debugEvents,
		}
		result, err := builder.Build()
		if err != nil {
			logrus.Fatalf("Unable to build layout: %v", err)
		}

		env.RunUntil(horizon)
		env.Halt()
		agg.Finalize(horizon)

		PrintReport(result, agg, horizon, showDetail)
		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
	runCmd.Flags().Float64Var(&horizon, "horizon", 28800, "Total simulation horizon (in seconds)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the run's random streams")
	runCmd.Flags().Float64Var(&bucketSize, "bucket-size", aggregate.DefaultBucketSizeSec, "Summary bucket width (in seconds)")
	runCmd.Flags().IntVar(&contextWindow, "context-window", aggregate.DefaultContextWindow, "Events captured before/after each DOWN/JAMMED event")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&debugEvents, "debug-events", false, "Keep the full per-transition log in memory")
	runCmd.Flags().BoolVar(&showDetail, "detail", false, "Print events_detail rows after the summary")

	rootCmd.AddCommand(runCmd)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/lifnet-sim/lifnet/sim"
	"github.com/lifnet-sim/lifnet/sim/report"
	"github.com/lifnet-sim/lifnet/sim/store"
	"github.com/lifnet-sim/lifnet/sim/trace"
)

var (
	seed       int64  // Seed for connectivity and background noise
	steps      int64  // Number of steps to simulate (0.1 ms each)
	logLevel   string // Log verbosity level
	configPath string // YAML params file
	outPath    string // TSV spike export
	dbPath     string // SQLite spike store
	traceLevel string // Population trace level
	display    bool   // Print neurons, connection map and spike times

	runFlags  paramFlags
	connFlags paramFlags
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lifnet",
	Short: "Fixed-step simulator for sparse networks of leaky integrate-and-fire neurons",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd builds a network, runs it and exports the spikes
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := resolveParams(cmd, configPath, &runFlags)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, population", traceLevel)
		}
		if steps < 0 {
			logrus.Fatalf("--steps must be non-negative, got %d", steps)
		}

		startTime := time.Now()
		net, err := simulate(params, seed, steps, trace.TraceLevel(traceLevel))
		if err != nil {
			logrus.Fatalf("Failed to build network: %v", err)
		}
		logrus.Infof("Simulated %d steps in %v", steps, time.Since(startTime))

		sim.ComputeMetrics(net).Print(os.Stdout)
		if st := net.Trace(); st != nil {
			printTraceSummary(os.Stdout, trace.Summarize(st))
		}
		if display {
			report.DisplaySimulation(os.Stdout, net)
		}

		if err := export(cmd.Context(), net, outPath, dbPath); err != nil {
			logrus.Fatalf("Export failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// connectivityCmd builds a network without running it and checks its in-degrees
var connectivityCmd = &cobra.Command{
	Use:   "connectivity",
	Short: "Generate the connectivity and report in-degrees and the connection map",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := resolveParams(cmd, configPath, &connFlags)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		net, err := sim.NewNetwork(params, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Failed to build network: %v", err)
		}
		if mismatches := report.DisplayInDegrees(os.Stdout, net); mismatches > 0 {
			logrus.Fatalf("%d neurons do not have the configured in-degree", mismatches)
		}
		conn := net.ConnectionMap()
		fmt.Printf("Edges: %d, repeated pairs: %d\n\n", conn.EdgeCount(), conn.Duplicates())
		if display {
			report.DisplayConnectionMap(os.Stdout, conn)
		}
	},
}

// defaultsCmd prints the default parameters as a YAML template
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default network parameters as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeDefaults(os.Stdout); err != nil {
			logrus.Fatalf("YAML marshal failed: %v", err)
		}
	},
}

// simulate builds the network for params and seed and runs it for n steps.
func simulate(params sim.Params, seed, n int64, level trace.TraceLevel) (*sim.Network, error) {
	net, err := sim.NewNetwork(params, sim.NewSimulationKey(seed))
	if err != nil {
		return nil, err
	}
	if cfg := (trace.TraceConfig{Level: level}); cfg.Enabled() {
		net.SetTrace(trace.NewSimulationTrace(cfg))
	}
	net.Run(n)
	return net, nil
}

// export writes the spike file and the database entry when their paths are
// set. The two sinks run concurrently and neither cancels the other; the
// network is only read.
func export(ctx context.Context, net *sim.Network, out, db string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var g errgroup.Group
	if out != "" {
		g.Go(func() error {
			if err := report.WriteSpikesFile(out, net.Neurons()); err != nil {
				logrus.Errorf("Writing %s: %v", out, err)
				return err
			}
			logrus.Infof("Spikes written to %s", out)
			return nil
		})
	}
	if db != "" {
		g.Go(func() error {
			if err := saveToStore(ctx, net, db); err != nil {
				logrus.Errorf("Saving to %s: %v", db, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func saveToStore(ctx context.Context, net *sim.Network, path string) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	run, err := s.SaveRun(ctx, net)
	if err != nil {
		return err
	}
	logrus.Infof("Run %s stored in %s (%d spikes)", run.ID, path, run.Spikes)
	return nil
}

func writeDefaults(w io.Writer) error {
	data, err := yaml.Marshal(sim.DefaultParams())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Population Activity ===")
	fmt.Fprintf(w, "Traced Steps         : %d\n", s.TotalSteps)
	fmt.Fprintf(w, "Mean Spikes / Step   : %.3f\n", s.MeanSpikesPerStep)
	fmt.Fprintf(w, "Peak Spikes / Step   : %d (step %d)\n", s.PeakSpikes, s.PeakStep)
	fmt.Fprintf(w, "Fano Factor          : %.3f\n", s.FanoFactor)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for connectivity and background noise")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with network parameters (see `lifnet defaults`)")
	rootCmd.PersistentFlags().BoolVar(&display, "display", false, "Print detailed per-neuron views (small networks only)")

	runCmd.Flags().Int64Var(&steps, "steps", 10000, "Number of steps to simulate (0.1 ms each)")
	runCmd.Flags().StringVar(&outPath, "out", "data_neuro.txt", "Tab-separated spike output (time_ms, neuron); empty disables")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to store the run in; empty disables")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Population trace level (none, population)")
	runFlags.register(runCmd)

	connFlags.register(connectivityCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(connectivityCmd)
	rootCmd.AddCommand(defaultsCmd)
}

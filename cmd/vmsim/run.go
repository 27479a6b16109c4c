package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sibexico/HexFrames/vmem"
	"github.com/spf13/cobra"
)

var (
	runWorkload   string
	runSaveTo     string
	runMemory     int
	runPolicies   []string
	runSeed       int64
	runRandomize  bool
	runSequential bool
	runFaults     bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVarP(&runWorkload, "workload", "w", "", "Replay a workload file instead of generating one")
	cmd.Flags().StringVar(&runSaveTo, "save-workload", "", "Save the generated workload to a file")
	cmd.Flags().IntVarP(&runMemory, "memory", "m", 0, "Number of frames (overrides config)")
	cmd.Flags().StringSliceVarP(&runPolicies, "policies", "p", nil, "Policies to run (equal, proportional, pff, wss)")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "Random seed (overrides config)")
	cmd.Flags().BoolVar(&runRandomize, "randomize", false, "Draw memory size and PFF/WSS parameters at random")
	cmd.Flags().BoolVar(&runSequential, "sequential", false, "Run policies one after another")
	cmd.Flags().BoolVar(&runFaults, "faults", false, "Include per-process fault counts in JSON output")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the allocation policies on a workload",
		Long: `The run command generates a random workload (or replays one from a file),
emulates every selected allocation policy on its own copy and prints fault
statistics per policy.

Example:
  vmsim run
  vmsim run --memory 500 --policies pff,wss
  vmsim run --workload trace.vmw --json
  vmsim run --randomize --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd)
		},
	}
	return cmd
}

func runRun(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("seed") {
		cfg.Generator.Seed = runSeed
	}
	rng := rand.New(rand.NewSource(cfg.Generator.Seed))
	if runRandomize {
		cfg = vmem.RandomizeConfig(rng, cfg, vmem.DefaultParameterRanges())
	}
	if cmd.Flags().Changed("memory") {
		cfg.MemorySize = runMemory
	}
	if len(runPolicies) > 0 {
		cfg.Policies = runPolicies
	}
	if runSequential {
		cfg.Parallel = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)

	var processes []*vmem.Process
	if runWorkload != "" {
		printVerbose("Loading workload: %s\n", runWorkload)
		processes, err = vmem.LoadWorkload(runWorkload)
	} else {
		printVerbose("Generating workload with seed %d\n", cfg.Generator.Seed)
		processes, err = vmem.GenerateWorkload(rng, cfg.Generator)
	}
	if err != nil {
		return err
	}

	if runSaveTo != "" {
		ct, err := vmem.ParseCompressionType(cfg.Compression)
		if err != nil {
			return err
		}
		header, err := vmem.SaveWorkload(runSaveTo, processes, ct)
		if err != nil {
			return err
		}
		printVerbose("Saved workload to %s (%s, ratio %.2f)\n",
			runSaveTo, header.CompressionType, header.GetCompressionRatio())
	}

	sim, err := vmem.NewSimulator(cfg, logger)
	if err != nil {
		return err
	}
	results, err := sim.Run(processes)
	if err != nil {
		return err
	}

	report := newRunReport(cfg, vmem.Summarize(processes), results, runFaults)
	if jsonOut {
		return printJSON(report)
	}
	if !quiet {
		writeReport(os.Stdout, report)
	}
	return nil
}

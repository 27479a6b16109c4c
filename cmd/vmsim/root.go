package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/sibexico/HexFrames/vmem"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "Compare frame allocation policies on page reference workloads",
	Long: `vmsim emulates a fixed pool of physical frames shared by many processes
and reports the page faults each process incurs under the equal, proportional,
page fault frequency and working set size allocation policies.

Configuration is read from a JSON file (--config) or from VMSIM_* environment
variables.`,
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when given, the environment otherwise,
// and applies the global flag overrides.
func loadConfig() (*vmem.Config, error) {
	var cfg *vmem.Config
	if configPath != "" {
		loaded, err := vmem.LoadConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = vmem.LoadConfigFromEnv()
	}

	switch {
	case logLevel != "":
		cfg.LogLevel = logLevel
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}
	return cfg, nil
}

// newLogger writes logs to stderr so stdout stays parseable with --json
func newLogger(cfg *vmem.Config) *slog.Logger {
	return vmem.NewLogger(cfg.LogLevel, os.Stderr)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

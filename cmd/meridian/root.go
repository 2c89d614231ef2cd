package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Tessera Meridian - scope and guardrail policy resolution engine",
	Long: `Tessera Meridian resolves declarative chatbot scopes into effective
guardrail policies and answers enforcement questions for retrieval and
chat pipelines.

It provides:
  - Scope definition loading and validation from YAML
  - Deterministic, commutative multi-scope policy resolution
  - Topic guardrail checks and dataset filter admission
  - A decision audit trail backed by SQLite
  - Prometheus metrics for resolution and enforcement`,
	Version: Version,
}

// Execute runs the root command. The exit status distinguishes validation
// failures and policy conflicts for scripted callers.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

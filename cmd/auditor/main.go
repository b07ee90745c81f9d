// auditor classifies case-management exports by represented-party
// conduct and payment status and writes an operator report.
//
// Usage:
//
//	auditor run [location] [--config auditor.toml] [-o report.xlsx]
//	auditor parse <file> [--config auditor.toml]
//	auditor version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config string
}

var rootCmd = &cobra.Command{
	Use:   "auditor",
	Short: "Classify case exports by client conduct and payment status",
	Long: "auditor parses case-management timeline exports, extracts deterministic\n" +
		"conduct and billing signals, asks a reasoning service to classify each\n" +
		"case against a versioned policy, and reports the results.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", "", "Path to config file (default: ./auditor.toml when present)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

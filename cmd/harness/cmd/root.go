package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the root Cobra command that gets called from the main func.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harness",
		Short: "harness measures the latency of a streaming word count under an open-loop load.",
		Long: `harness measures the latency of a streaming word count under an open-loop load.

Settings are read from harness.yaml in the working directory or /app, or from
the file passed with --config. HARNESS_* environment variables override the
file, e.g. HARNESS_RUN_THROUGHPUT=2000, and flags override both.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "path to the configuration file")

	cmd.AddCommand(runCmd())
	return cmd
}

// Command semalog is the thin CLI surface (component K) over the
// change-detection, transformation, and replay engine: it wires the host
// git repository and an on-disk ledger file into the Detection Driver and
// the Merge Replayer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

func main() {
	logger := core.NewLogger()
	root := newRootCommand(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(logger core.Logger) *cobra.Command {
	cfg := &cliConfig{}
	root := &cobra.Command{
		Use:           "semalog",
		Short:         "Semantic change tracking for C/C++ source trees",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.load(cmd.Flags())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.RepoPath, "repo", ".", "path to the git repository")
	flags.StringVar(&cfg.LedgerPath, "ledger", "", "path to the change ledger file (default: <repo>/.semalog-ledger)")

	root.AddCommand(newDetectCommand(cfg, logger))
	root.AddCommand(newLedgerCommand(cfg, logger))
	root.AddCommand(newMergeCommand(cfg, logger))
	root.AddCommand(newDescribeCommand(cfg))
	return root
}

func newDescribeCommand(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List the configuration options every subcommand reads from flags and ~/.semalogrc.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, opt := range cfg.ListConfigurationOptions() {
				fmt.Fprintf(cmd.OutOrStdout(), "--%s (%s, default %s): %s\n", opt.Flag, opt.Type, opt.FormatDefault(), opt.Description)
			}
			return nil
		},
	}
}

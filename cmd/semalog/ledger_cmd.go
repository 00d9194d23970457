package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

func newLedgerCommand(cfg *cliConfig, logger core.Logger) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the change ledger.",
	}
	ledgerCmd.AddCommand(newLedgerShowCommand(cfg, logger))
	return ledgerCmd
}

func newLedgerShowCommand(cfg *cliConfig, logger core.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every recorded ledger entry.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readExistingLedger(cfg.LedgerPath)
			if err != nil {
				return fmt.Errorf("reading ledger %s: %w", cfg.LedgerPath, err)
			}
			for _, entry := range entries {
				fmt.Fprintf(os.Stdout, "%d:\n", entry.Index)
				for _, c := range entry.Changes {
					fmt.Fprintf(os.Stdout, "  %s %s\n", c.Name(), describeChange(c))
				}
			}
			return nil
		},
	}
}

func describeChange(c change.Change) string {
	switch v := c.(type) {
	case *change.FileAdded:
		return v.FileName
	case *change.FileDeleted:
		return v.FileName
	case *change.FileRenamed:
		return v.FromName + " -> " + v.ToName
	case *change.VariableRenamed:
		return v.Path.String() + " -> " + v.NewName
	case *change.SubASTInserted:
		return v.ASTPath.String()
	case *change.TextualChange:
		return fmt.Sprintf("%s [%d,%d)", v.FilePath, v.FromLine, v.ToLine)
	default:
		return ""
	}
}

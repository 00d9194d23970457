package main

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/ledger"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/replay"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

func newMergeCommand(cfg *cliConfig, logger core.Logger) *cobra.Command {
	var incomingLedgerPath string
	cmd := &cobra.Command{
		Use:   "merge <ancestor-commit>",
		Short: "Replay an incoming branch's ledger onto the local ledger at the given ancestor tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cfg, logger, args[0], incomingLedgerPath)
		},
	}
	cmd.Flags().StringVar(&incomingLedgerPath, "incoming-ledger", "", "path to the incoming branch's ledger file")
	_ = cmd.MarkFlagRequired("incoming-ledger")
	return cmd
}

func runMerge(cfg *cliConfig, logger core.Logger, ancestorRef, incomingLedgerPath string) error {
	repo, err := git.PlainOpen(cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.RepoPath, err)
	}
	ancestorTree, err := resolveTree(repo, ancestorRef)
	if err != nil {
		return err
	}

	local, err := readExistingLedger(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("reading local ledger %s: %w", cfg.LedgerPath, err)
	}
	incomingFile, err := os.Open(incomingLedgerPath)
	if err != nil {
		return fmt.Errorf("opening incoming ledger %s: %w", incomingLedgerPath, err)
	}
	defer incomingFile.Close()
	incoming, err := ledger.Load(incomingFile)
	if err != nil {
		return fmt.Errorf("reading incoming ledger %s: %w", incomingLedgerPath, err)
	}

	parser := parsing.NewParser(logger)
	state := reposstate.NewTreeBackedState(parser, repo.Storer, ancestorTree.Hash())

	entry, err := replay.ReplayEntry(context.Background(), state, local, incoming)
	if err != nil {
		var conflict *replay.ConflictError
		if asConflictError(err, &conflict) {
			return fmt.Errorf("merge aborted: %s conflicts with %s: %w", conflict.Change.Name(), conflict.Blocker.Name(), conflict.Cause)
		}
		return fmt.Errorf("replaying merge: %w", err)
	}

	f, err := os.OpenFile(cfg.LedgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", cfg.LedgerPath, err)
	}
	defer f.Close()
	if err := ledger.Append(f, entry); err != nil {
		return err
	}
	logger.Infof("merge: replayed %d change(s) as ledger entry %d, new tree %s", len(entry.Changes), entry.Index, state.Root())
	return nil
}

func asConflictError(err error, target **replay.ConflictError) bool {
	if c, ok := err.(*replay.ConflictError); ok {
		*target = c
		return true
	}
	return false
}

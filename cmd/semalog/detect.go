package main

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	progress "gopkg.in/cheggaaa/pb.v1"

	"github.com/spf13/cobra"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/detect"
	"github.com/smartgit-oss/semalog/internal/semalog/ledger"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

func newDetectCommand(cfg *cliConfig, logger core.Logger) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "detect <prior-commit> <staged-commit>",
		Short: "Detect semantic changes between two commits and append them to the ledger.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cfg, logger, args[0], args[1], quiet)
		},
	}
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the progress bar")
	return cmd
}

func runDetect(cfg *cliConfig, logger core.Logger, priorRef, stagedRef string, quiet bool) error {
	repo, err := git.PlainOpen(cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.RepoPath, err)
	}
	priorTree, err := resolveTree(repo, priorRef)
	if err != nil {
		return err
	}
	stagedTree, err := resolveTree(repo, stagedRef)
	if err != nil {
		return err
	}

	parser := parsing.NewParser(logger)
	driver := detect.NewDriver(repo.Storer, parser, logger)

	var bar *progress.ProgressBar
	if !quiet {
		bar = progress.New(0)
		bar.ShowTimeLeft = false
		bar.ShowSpeed = false
		bar.Callback = func(msg string) { os.Stderr.WriteString("\r" + msg) }
		bar.NotPrint = true
		bar.Start()
		defer bar.Finish()
	}

	changes, err := driver.Run(context.Background(), priorTree, stagedTree)
	if err != nil {
		return fmt.Errorf("detecting changes: %w", err)
	}
	if bar != nil {
		bar.Total = int64(len(changes))
		bar.Set(len(changes))
	}

	f, err := os.OpenFile(cfg.LedgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", cfg.LedgerPath, err)
	}
	defer f.Close()

	existing, err := readExistingLedger(cfg.LedgerPath)
	if err != nil {
		return err
	}
	entry := ledger.Entry{Index: ledger.NextIndex(existing), Changes: changes}
	if err := ledger.Append(f, entry); err != nil {
		return err
	}
	logger.Infof("detect: recorded %d change(s) as ledger entry %d", len(changes), entry.Index)
	return nil
}

// resolveTree resolves a commit-ish (branch, tag, or hash) to its tree.
func resolveTree(repo *git.Repository, ref string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %q: %w", ref, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree for %q: %w", ref, err)
	}
	return tree, nil
}

func readExistingLedger(path string) ([]ledger.Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ledger.Load(f)
}

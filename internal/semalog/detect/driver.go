// Package detect implements the Detection Driver (component F): the
// iterative loop that extracts a canonical, ordered change list from a tree
// diff by consulting each change kind's detector in precedence order.
package detect

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/Jeffail/tunny"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/gitadapter"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/renamedetect"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
	"github.com/smartgit-oss/semalog/internal/semalog/subastdetect"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Driver runs the Detection Driver's loop against one pair of trees.
type Driver struct {
	storer storer.EncodedObjectStorer
	parser *parsing.Parser
	blobs  *gitadapter.BlobCache
	logger core.Logger
}

// NewDriver builds a Driver reading objects from storer. A nil logger or
// parser is replaced with a default.
func NewDriver(storer storer.EncodedObjectStorer, parser *parsing.Parser, logger core.Logger) *Driver {
	if parser == nil {
		parser = parsing.NewParser(logger)
	}
	if logger == nil {
		logger = core.NewLogger()
	}
	return &Driver{storer: storer, parser: parser, blobs: gitadapter.NewBlobCache(storer), logger: logger}
}

// Run extracts the canonical change list taking priorTree to stagedTree,
// leaving state positioned at stagedTree's content once the diff is empty.
func (d *Driver) Run(ctx context.Context, priorTree, stagedTree *object.Tree) ([]change.Change, error) {
	state := reposstate.NewTreeBackedState(d.parser, d.storer, priorTree.Hash())
	var out []change.Change

	for {
		currentTree, err := d.loadTree(state.Root())
		if err != nil {
			return nil, err
		}
		diff, err := gitadapter.Diff(currentTree, stagedTree)
		if err != nil {
			return nil, err
		}
		if diff.IsEmpty() {
			break
		}

		batch, err := d.nextBatch(ctx, diff, state)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if err := applyBatchReverse(ctx, state, batch); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Driver) loadTree(hash plumbing.Hash) (*object.Tree, error) {
	if hash.IsZero() {
		return &object.Tree{}, nil
	}
	obj, err := d.storer.EncodedObject(plumbing.TreeObject, hash)
	if err != nil {
		return nil, core.NewStoreError("load tree", err)
	}
	tree := &object.Tree{}
	if err := tree.Decode(obj); err != nil {
		return nil, core.NewStoreError("decode tree", err)
	}
	return tree, nil
}

// nextBatch asks each change kind to detect, in precedence order, and
// returns the first non-empty batch.
func (d *Driver) nextBatch(ctx context.Context, diff gitadapter.TreeDiff, state *reposstate.TreeBackedState) ([]change.Change, error) {
	if batch := d.detectFileAdded(diff); len(batch) > 0 {
		return batch, nil
	}
	if batch, err := d.detectFileDeleted(diff, state); len(batch) > 0 || err != nil {
		return batch, err
	}
	if batch := d.detectFileRenamed(diff); len(batch) > 0 {
		return batch, nil
	}
	if batch, err := d.detectVariableRenamed(ctx, diff, state); len(batch) > 0 || err != nil {
		return batch, err
	}
	if batch, err := d.detectSubASTInserted(ctx, diff, state); len(batch) > 0 || err != nil {
		return batch, err
	}
	return d.detectTextual(diff, state)
}

func (d *Driver) detectFileAdded(diff gitadapter.TreeDiff) []change.Change {
	entries := append([]gitadapter.Entry{}, diff.Added...)
	sortByToName(entries)
	var out []change.Change
	for _, e := range entries {
		content, err := d.blobs.Get(e.ToHash)
		if err != nil {
			continue
		}
		out = append(out, &change.FileAdded{FileName: e.ToName, Content: splitLinesExported(content)})
	}
	return out
}

func (d *Driver) detectFileDeleted(diff gitadapter.TreeDiff, state *reposstate.TreeBackedState) ([]change.Change, error) {
	entries := append([]gitadapter.Entry{}, diff.Deleted...)
	sortByFromName(entries)
	var out []change.Change
	for _, e := range entries {
		content, err := state.Get(e.FromName)
		if err != nil {
			return nil, err
		}
		out = append(out, &change.FileDeleted{FileName: e.FromName, Content: splitLinesExported(content)})
	}
	return out, nil
}

func (d *Driver) detectFileRenamed(diff gitadapter.TreeDiff) []change.Change {
	entries := append([]gitadapter.Entry{}, diff.Renamed...)
	sortByFromName(entries)
	var out []change.Change
	for _, e := range entries {
		out = append(out, &change.FileRenamed{FromName: e.FromName, ToName: e.ToName})
	}
	return out
}

func (d *Driver) detectVariableRenamed(ctx context.Context, diff gitadapter.TreeDiff, state *reposstate.TreeBackedState) ([]change.Change, error) {
	entries := append([]gitadapter.Entry{}, diff.Modified...)
	sortByModified(entries)
	pairs := d.parseAll(ctx, state, entries)
	var out []change.Change
	for i, e := range entries {
		pair := pairs[i]
		if pair == nil {
			continue
		}
		for _, vr := range renamedetect.Detect(ctx, e.ToName, pair.old, pair.new) {
			out = append(out, vr)
		}
		pair.old.Close()
		pair.new.Close()
	}
	return out, nil
}

func (d *Driver) detectSubASTInserted(ctx context.Context, diff gitadapter.TreeDiff, state *reposstate.TreeBackedState) ([]change.Change, error) {
	entries := append([]gitadapter.Entry{}, diff.Modified...)
	sortByModified(entries)
	pairs := d.parseAll(ctx, state, entries)
	var out []change.Change
	for i, e := range entries {
		pair := pairs[i]
		if pair == nil {
			continue
		}
		for _, ins := range subastdetect.Detect(e.ToName, pair.old, pair.new) {
			out = append(out, ins)
		}
		pair.old.Close()
		pair.new.Close()
	}
	return out, nil
}

type parsedPair struct {
	old, new *parsing.TranslationUnit
}

// parseAll parses every modified file's old and new content in a bounded
// worker pool, the same fan-out-then-collect shape hercules used tunny for
// when applying a PipelineItem across many files concurrently. Each entry's
// result lands at its own index, or nil if parsing failed, so callers can
// zip the result back up against entries without a second pass.
func (d *Driver) parseAll(ctx context.Context, state *reposstate.TreeBackedState, entries []gitadapter.Entry) []*parsedPair {
	results := make([]*parsedPair, len(entries))
	if len(entries) == 0 {
		return results
	}
	workers := runtime.NumCPU()
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}
	pool := tunny.NewFunc(workers, func(payload interface{}) interface{} {
		idx := payload.(int)
		oldTU, newTU, err := d.parseBoth(ctx, state, entries[idx])
		if err != nil {
			return nil
		}
		return &parsedPair{old: oldTU, new: newTU}
	})
	defer pool.Close()

	var wg sync.WaitGroup
	wg.Add(len(entries))
	for i := range entries {
		i := i
		go func() {
			defer wg.Done()
			if out := pool.Process(i); out != nil {
				results[i] = out.(*parsedPair)
			}
		}()
	}
	wg.Wait()
	return results
}

func (d *Driver) detectTextual(diff gitadapter.TreeDiff, state *reposstate.TreeBackedState) ([]change.Change, error) {
	entries := append([]gitadapter.Entry{}, diff.Modified...)
	sortByModified(entries)
	var out []change.Change
	for _, e := range entries {
		oldContent, err := state.Get(e.FromName)
		if err != nil {
			return nil, err
		}
		newContent, err := d.blobs.Get(e.ToHash)
		if err != nil {
			return nil, err
		}
		for _, tc := range detectTextualChange(e.ToName, oldContent, newContent) {
			out = append(out, tc)
		}
	}
	return out, nil
}

func (d *Driver) parseBoth(ctx context.Context, state *reposstate.TreeBackedState, e gitadapter.Entry) (*parsing.TranslationUnit, *parsing.TranslationUnit, error) {
	oldContent, err := state.Get(e.FromName)
	if err != nil {
		return nil, nil, err
	}
	newContent, err := d.blobs.Get(e.ToHash)
	if err != nil {
		return nil, nil, err
	}
	oldTU, err := d.parser.Parse(ctx, e.FromName, oldContent)
	if err != nil {
		return nil, nil, err
	}
	newTU, err := d.parser.Parse(ctx, e.ToName, newContent)
	if err != nil {
		oldTU.Close()
		return nil, nil, err
	}
	return oldTU, newTU, nil
}

// detectTextualChange computes a line-level unified diff between old and
// new content, emitting a single-line removal or insertion per non-context
// line, matching the spec's line-numbering convention (zero-based relative
// to the original file).
func detectTextualChange(filePath string, oldContent, newContent []byte) []*change.TextualChange {
	dmp := diffmatchpatch.New()
	oldText, newText, lineArray := dmp.DiffLinesToChars(string(oldContent), string(newContent))
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []*change.TextualChange
	oldLine := 0
	for _, diff := range diffs {
		n := countNewlines(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			oldLine += n
		case diffmatchpatch.DiffDelete:
			lines := splitLinesExported([]byte(diff.Text))
			for range lines {
				out = append(out, &change.TextualChange{FilePath: filePath, FromLine: oldLine, ToLine: oldLine + 1, Content: nil})
				oldLine++
			}
		case diffmatchpatch.DiffInsert:
			lines := splitLinesExported([]byte(diff.Text))
			for _, l := range lines {
				out = append(out, &change.TextualChange{FilePath: filePath, FromLine: oldLine, ToLine: oldLine, Content: []string{l}})
			}
		}
	}
	return out
}

func countNewlines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func splitLinesExported(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

func sortByToName(entries []gitadapter.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ToName < entries[j].ToName })
}

func sortByFromName(entries []gitadapter.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].FromName < entries[j].FromName })
}

func sortByModified(entries []gitadapter.Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ToName < entries[j].ToName })
}

// applyBatchReverse applies batch to state in reverse order; each change is
// first transformed through the changes already applied earlier in this
// same reverse pass, per the Detection Driver's ordering guarantee.
func applyBatchReverse(ctx context.Context, state *reposstate.TreeBackedState, batch []change.Change) error {
	var applied []change.Change
	for i := len(batch) - 1; i >= 0; i-- {
		current := batch[i]
		for _, a := range applied {
			next, err := current.Transform(ctx, state, a)
			if err != nil {
				return err
			}
			if next == nil {
				current = nil
				break
			}
			current = next
		}
		if current == nil {
			continue
		}
		if err := current.Apply(ctx, state); err != nil {
			return err
		}
		applied = append(applied, current)
	}
	return nil
}

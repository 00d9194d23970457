// Package subastdetect implements the Sub-AST Insertion Detector (component
// E): it diffs token-hash signatures of corresponding sibling children
// across two ASTs to find SubASTInserted edits, recursing into
// structure-preserving refinements the way FileDiff refines line diffs with
// tree-sitter boundaries in the ambient diff pipeline.
package subastdetect

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/smartgit-oss/semalog/internal/semalog/astpath"
	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

// highwayHashKey is a fixed 32-byte key; signature comparison only needs a
// stable hash, not a keyed MAC, so a constant key is appropriate here.
var highwayHashKey = make([]byte, 32)

// Detect finds top-level SubASTInserted edits by recursively comparing the
// children of corresponding parent cursors in oldTU and newTU, rooted at
// their translation units.
func Detect(fileName string, oldTU, newTU *parsing.TranslationUnit) []*change.SubASTInserted {
	var out []*change.SubASTInserted
	refine(astpath.New(fileName), oldTU.Root(), newTU.Root(), oldTU, newTU, &out)
	return out
}

// refine diffs the children of oldParent and newParent (addressed by
// parentPath in both trees) and appends any top-level insertions found,
// recursing into structure-preserving refinements for paired
// removal/insertion hunks.
func refine(parentPath astpath.Path, oldParent, newParent parsing.Cursor, oldTU, newTU *parsing.TranslationUnit, out *[]*change.SubASTInserted) {
	oldChildren := oldParent.Children()
	newChildren := newParent.Children()

	oldSigs := signatures(oldChildren)
	newSigs := signatures(newChildren)

	dmp := diffmatchpatch.New()
	oldText, newText, lineArray := dmp.DiffLinesToChars(joinSigs(oldSigs), joinSigs(newSigs))
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	oldIdx, newIdx := 0, 0
	var predecessorPath astpath.Path
	havePredecessor := false

	for hunkIdx, d := range diffs {
		lineCount := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; i < lineCount; i++ {
				refine(parentPath.Appended(oldParent, oldChildren[oldIdx]), oldChildren[oldIdx], newChildren[newIdx], oldTU, newTU, out)
				predecessorPath = parentPath.Appended(newParent, newChildren[newIdx])
				havePredecessor = true
				oldIdx++
				newIdx++
			}
		case diffmatchpatch.DiffDelete:
			// Paired with a following insert: structure-preserving refinement
			// recurses instead of emitting an insertion for the paired child.
			if hunkIdx+1 < len(diffs) && diffs[hunkIdx+1].Type == diffmatchpatch.DiffInsert {
				insertLines := countLines(diffs[hunkIdx+1].Text)
				pairCount := lineCount
				if insertLines < pairCount {
					pairCount = insertLines
				}
				for i := 0; i < pairCount; i++ {
					refine(parentPath.Appended(oldParent, oldChildren[oldIdx]), oldChildren[oldIdx], newChildren[newIdx], oldTU, newTU, out)
					predecessorPath = parentPath.Appended(newParent, newChildren[newIdx])
					havePredecessor = true
					oldIdx++
					newIdx++
				}
				for i := pairCount; i < lineCount; i++ {
					oldIdx++
				}
				continue
			}
			oldIdx += lineCount
		case diffmatchpatch.DiffInsert:
			prevWasDelete := hunkIdx > 0 && diffs[hunkIdx-1].Type == diffmatchpatch.DiffDelete
			startAt := newIdx
			if prevWasDelete {
				// the paired portion was already consumed above together
				// with the delete hunk; only the excess inserted children
				// (if insert is longer than the paired delete) are new here.
				pairCount := countLines(diffs[hunkIdx-1].Text)
				if lineCount < pairCount {
					pairCount = lineCount
				}
				startAt = newIdx + pairCount
			}
			for i := startAt; i < newIdx+lineCount; i++ {
				child := newChildren[i]
				childPath := parentPath.Appended(newParent, child)
				extent := child.Extent()
				insertion := &change.SubASTInserted{
					ParentPath:      parentPath,
					PredecessorPath: predecessorPath,
					HasPredecessor:  havePredecessor,
					From:            extent.Start.Offset,
					To:              extent.End.Offset,
					FileLines:       splitPreservingTerminators(string(newTU.Source())),
					ASTPath:         childPath,
				}
				*out = append(*out, insertion)
				predecessorPath = childPath
				havePredecessor = true
			}
			newIdx += lineCount
		}
	}
}

// signatures builds one signature per child. signature pairs the cursor's own
// kind with the spelling of each token in its full token stream (tokens carry
// no kind of their own here), then reduces that to a fixed-width highwayhash
// digest so the diff operates over short, comparable "lines".
func signatures(children []parsing.Cursor) []string {
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = signature(c)
	}
	return out
}

func signature(c parsing.Cursor) string {
	var buf []byte
	for _, tok := range c.Tokens() {
		buf = append(buf, []byte(c.Kind())...)
		buf = append(buf, 0)
		buf = append(buf, []byte(tok)...)
		buf = append(buf, 0)
	}
	sum := highwayhash.Sum(buf, highwayHashKey)
	return hex.EncodeToString(sum[:])
}

func joinSigs(sigs []string) string {
	var buf []byte
	for _, s := range sigs {
		buf = append(buf, []byte(s)...)
		buf = append(buf, '\n')
	}
	return string(buf)
}

func countLines(text string) int {
	n := 0
	for _, r := range text {
		if r == '\n' {
			n++
		}
	}
	return n
}

func splitPreservingTerminators(text string) []string {
	var lines []string
	start := 0
	data := []byte(text)
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, string(data[start:i+1]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// Package gitadapter is the Git Adapter (component J): it computes tree
// diffs with go-git, classifies entries the way FileDiff classifies
// merkletrie actions in the ambient diff pipeline, and caches blobs read
// during one detection run.
package gitadapter

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// Entry is one classified change between two trees.
type Entry struct {
	Action   merkletrie.Action
	FromName string
	FromHash plumbing.Hash
	ToName   string
	ToHash   plumbing.Hash
}

// TreeDiff is the classified result of diffing two git trees.
type TreeDiff struct {
	Added    []Entry
	Deleted  []Entry
	Renamed  []Entry
	Modified []Entry
}

// IsEmpty reports whether the diff found no changes at all, the Detection
// Driver's stopping condition.
func (d TreeDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Deleted) == 0 && len(d.Renamed) == 0 && len(d.Modified) == 0
}

// Diff computes the classified diff between from and to, pairing deletions
// and additions that carry identical blob hashes into renames — go-git does
// not run a similarity-based rename detector, but a content-addressed store
// makes an exact-hash match a sound, simple heuristic for the pure-rename
// case the engine needs to recognize.
func Diff(from, to *object.Tree) (TreeDiff, error) {
	changes, err := object.DiffTree(from, to)
	if err != nil {
		return TreeDiff{}, core.NewStoreError("diff tree", err)
	}

	var adds, dels, mods []Entry
	for _, c := range changes {
		action, err := c.Action()
		if err != nil {
			return TreeDiff{}, core.NewStoreError("diff tree", err)
		}
		switch action {
		case merkletrie.Insert:
			adds = append(adds, Entry{Action: action, ToName: c.To.Name, ToHash: c.To.TreeEntry.Hash})
		case merkletrie.Delete:
			dels = append(dels, Entry{Action: action, FromName: c.From.Name, FromHash: c.From.TreeEntry.Hash})
		case merkletrie.Modify:
			mods = append(mods, Entry{
				Action:   action,
				FromName: c.From.Name,
				FromHash: c.From.TreeEntry.Hash,
				ToName:   c.To.Name,
				ToHash:   c.To.TreeEntry.Hash,
			})
		}
	}

	var renamed []Entry
	usedAdds := map[int]bool{}
	var remainingDels []Entry
	for _, del := range dels {
		matched := -1
		for i, add := range adds {
			if usedAdds[i] {
				continue
			}
			if add.ToHash == del.FromHash {
				matched = i
				break
			}
		}
		if matched >= 0 {
			usedAdds[matched] = true
			renamed = append(renamed, Entry{
				Action:   merkletrie.Modify,
				FromName: del.FromName,
				FromHash: del.FromHash,
				ToName:   adds[matched].ToName,
				ToHash:   adds[matched].ToHash,
			})
			continue
		}
		remainingDels = append(remainingDels, del)
	}
	var remainingAdds []Entry
	for i, add := range adds {
		if !usedAdds[i] {
			remainingAdds = append(remainingAdds, add)
		}
	}

	return TreeDiff{Added: remainingAdds, Deleted: remainingDels, Renamed: renamed, Modified: mods}, nil
}

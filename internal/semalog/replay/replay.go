// Package replay implements the Merge Replayer (component H): it rebases an
// incoming branch's ledger through a local branch's ledger using the change
// algebra, aborting on the first Conflict.
package replay

import (
	"context"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/ledger"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// ConflictError names the specific change that blocked the replay and the
// change it could not be rebased past, matching the Merge Replayer's
// contract to abort with the specific blocker.
type ConflictError struct {
	Change  change.Change
	Blocker change.Change
	Cause   error
}

func (e *ConflictError) Error() string {
	return e.Cause.Error()
}

func (e *ConflictError) Unwrap() error { return e.Cause }

// Replay rebases every change of incoming through the concatenation of
// local, in order, and applies the transformed sequence to state. It
// returns the transformed sequence (the new ledger entry's changes), or a
// *ConflictError naming the blocking pair on the first Conflict.
func Replay(ctx context.Context, state reposstate.State, local, incoming []change.Change) ([]change.Change, error) {
	var replayed []change.Change
	for _, c := range incoming {
		current := c
		for _, l := range local {
			next, err := current.Transform(ctx, state, l)
			if err != nil {
				return nil, &ConflictError{Change: c, Blocker: l, Cause: err}
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
			return nil, err
		}
		replayed = append(replayed, current)
	}
	return replayed, nil
}

// ReplayEntry runs Replay across every change of every incoming ledger
// entry beyond the common ancestor, flattening them into local's change
// sequence for rebasing, and returns a single new ledger entry recording
// the transformed incoming changes at max(local, incoming)+1.
func ReplayEntry(ctx context.Context, state reposstate.State, localEntries, incomingEntries []ledger.Entry) (ledger.Entry, error) {
	var local []change.Change
	for _, e := range localEntries {
		local = append(local, e.Changes...)
	}
	var incoming []change.Change
	for _, e := range incomingEntries {
		incoming = append(incoming, e.Changes...)
	}
	replayed, err := Replay(ctx, state, local, incoming)
	if err != nil {
		return ledger.Entry{}, err
	}
	index := ledger.NextIndex(localEntries)
	if incomingIndex := ledger.NextIndex(incomingEntries); incomingIndex > index {
		index = incomingIndex
	}
	return ledger.Entry{Index: index, Changes: replayed}, nil
}

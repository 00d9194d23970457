package change

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

func newState(t *testing.T, path string, content []byte) *reposstate.SingleFileState {
	t.Helper()
	return reposstate.NewSingleFileState(parsing.NewParser(nil), path, content)
}

// Property 1: no-op identity. x.Transform(nil-equivalent "disjoint" other) = x.
func TestFileAdded_TransformDisjointIsIdentity(t *testing.T) {
	ctx := context.Background()
	c := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}
	other := &FileAdded{FileName: "b.c", Content: []string{"int b;\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

// Property 3: two changes touching different paths transform to themselves
// in both directions.
func TestFileOps_SelfCommuteForDisjointFiles(t *testing.T) {
	ctx := context.Background()
	added := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}
	deleted := &FileDeleted{FileName: "b.c", Content: []string{"int b;\n"}}
	renamed := &FileRenamed{FromName: "c.c", ToName: "d.c"}

	got, err := added.Transform(ctx, nil, deleted)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	got, err = deleted.Transform(ctx, nil, renamed)
	require.NoError(t, err)
	assert.Equal(t, deleted, got)

	got, err = renamed.Transform(ctx, nil, added)
	require.NoError(t, err)
	assert.Equal(t, renamed, got)
}

func TestFileAdded_TransformSameFileSameContentDrops(t *testing.T) {
	ctx := context.Background()
	c := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}
	other := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileAdded_TransformSameFileDifferentContentConflicts(t *testing.T) {
	ctx := context.Background()
	c := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}
	other := &FileAdded{FileName: "a.c", Content: []string{"int b;\n"}}

	_, err := c.Transform(ctx, nil, other)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
}

// Property 2: drop idempotence. Once x.Transform(y) reports a drop (nil,
// nil), applying y alone to a state satisfying x's precondition must leave
// the state identical to applying y then x's (now-dropped) no-op.
func TestFileAdded_DropIdempotence(t *testing.T) {
	ctx := context.Background()
	x := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}
	y := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}

	dropped, err := x.Transform(ctx, nil, y)
	require.NoError(t, err)
	require.Nil(t, dropped)

	state := newState(t, "a.c", nil)
	require.NoError(t, y.Apply(ctx, state))
	contentAfterYOnly, err := state.Get("a.c")
	require.NoError(t, err)

	// dropped == nil means x contributes nothing further; the state after y
	// alone is already the final state.
	assert.Equal(t, "int a;\n", string(contentAfterYOnly))
}

// Review fix: FileAdded.Transform must report unconditional Conflict against
// FileRenamed/VariableRenamed/SubASTInserted/TextualChange, regardless of
// whether the paths involved overlap.
func TestFileAdded_TransformConflictsUnconditionallyWithStructuralKinds(t *testing.T) {
	ctx := context.Background()
	c := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}

	others := []Change{
		&FileRenamed{FromName: "unrelated.c", ToName: "also-unrelated.c"},
		&TextualChange{FilePath: "unrelated.c", FromLine: 0, ToLine: 1, Content: []string{"x\n"}},
	}
	for _, other := range others {
		_, err := c.Transform(ctx, nil, other)
		require.Error(t, err)
		assert.True(t, core.IsConflict(err), "expected Conflict for other=%T", other)
	}
}

func TestFileDeleted_TransformAgainstFileAddedSameName(t *testing.T) {
	ctx := context.Background()
	c := &FileDeleted{FileName: "a.c", Content: []string{"int a;\n"}}
	other := &FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}

	_, err := c.Transform(ctx, nil, other)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
}

// S6: delete-of-rename. Branch X deletes a.c; branch Y renames a.c -> b.c.
// Rebasing X's delete past Y's rename: if the bytes at b.c equal the
// recorded deleted content, the delete rewrites to target b.c.
func TestFileDeleted_TransformThroughMatchingRenameRewritesTarget(t *testing.T) {
	ctx := context.Background()
	content := []byte("int a;\n")
	state := newState(t, "b.c", content)

	del := &FileDeleted{FileName: "a.c", Content: []string{"int a;\n"}}
	rename := &FileRenamed{FromName: "a.c", ToName: "b.c"}

	got, err := del.Transform(ctx, state, rename)
	require.NoError(t, err)
	rewritten, ok := got.(*FileDeleted)
	require.True(t, ok)
	assert.Equal(t, "b.c", rewritten.FileName)
	assert.Equal(t, del.Content, rewritten.Content)
}

// S6, else branch: if the bytes at the rename's target differ from the
// recorded deleted content, the rebase conflicts instead.
func TestFileDeleted_TransformThroughRenameConflictsOnContentMismatch(t *testing.T) {
	ctx := context.Background()
	state := newState(t, "b.c", []byte("int a_edited;\n"))

	del := &FileDeleted{FileName: "a.c", Content: []string{"int a;\n"}}
	rename := &FileRenamed{FromName: "a.c", ToName: "b.c"}

	_, err := del.Transform(ctx, state, rename)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
}

func TestFileRenamed_ApplyAndEncodeRoundTrip(t *testing.T) {
	ctx := context.Background()
	// FileRenamed.Apply calls State.Rename, which SingleFileState (a
	// fixed-path overlay) rejects outright; a TreeBackedState is the Repo-State
	// implementation that actually supports renaming.
	storer := memory.NewStorage()
	state := reposstate.NewTreeBackedState(parsing.NewParser(nil), storer, plumbing.ZeroHash)
	require.NoError(t, state.Set("a.c", []byte("int a;\n")))
	c := &FileRenamed{FromName: "a.c", ToName: "b.c"}

	require.NoError(t, c.Apply(ctx, state))
	content, err := state.Get("b.c")
	require.NoError(t, err)
	assert.Equal(t, "int a;\n", string(content))

	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestFileAdded_EncodeDecodeRoundTrip(t *testing.T) {
	c := &FileAdded{FileName: "a.c", Content: []string{"int a;\n", "int b;\n"}}
	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestFileDeleted_EncodeDecodeRoundTrip(t *testing.T) {
	c := &FileDeleted{FileName: "a.c", Content: []string{"int a;\n"}}
	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

package change

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// Property 1: no-op identity against a disjoint-file change.
func TestTextualChange_TransformDisjointFileIsIdentity(t *testing.T) {
	ctx := context.Background()
	c := &TextualChange{FilePath: "a.c", FromLine: 2, ToLine: 3, Content: []string{"x\n"}}
	other := &TextualChange{FilePath: "b.c", FromLine: 0, ToLine: 1, Content: []string{"y\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

// Property 4: textual shift algebra. For TextualChange on the same file with
// self.FromLine >= other.ToLine, the transformed change shifts both
// endpoints by len(other.Content) - (other.ToLine - other.FromLine).
func TestTextualChange_ShiftAlgebra(t *testing.T) {
	ctx := context.Background()
	c := &TextualChange{FilePath: "a.c", FromLine: 5, ToLine: 7, Content: []string{"x\n"}}
	other := &TextualChange{FilePath: "a.c", FromLine: 1, ToLine: 2, Content: []string{"p\n", "q\n", "r\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	shifted, ok := got.(*TextualChange)
	require.True(t, ok)

	delta := len(other.Content) - (other.ToLine - other.FromLine)
	assert.Equal(t, c.FromLine+delta, shifted.FromLine)
	assert.Equal(t, c.ToLine+delta, shifted.ToLine)
	assert.Equal(t, c.Content, shifted.Content)
}

func TestTextualChange_TransformBeforeOtherIsIdentity(t *testing.T) {
	ctx := context.Background()
	c := &TextualChange{FilePath: "a.c", FromLine: 0, ToLine: 1, Content: []string{"x\n"}}
	other := &TextualChange{FilePath: "a.c", FromLine: 2, ToLine: 3, Content: []string{"y\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestTextualChange_TransformOverlappingRangesConflicts(t *testing.T) {
	ctx := context.Background()
	c := &TextualChange{FilePath: "a.c", FromLine: 1, ToLine: 4, Content: []string{"x\n"}}
	other := &TextualChange{FilePath: "a.c", FromLine: 2, ToLine: 3, Content: []string{"y\n"}}

	_, err := c.Transform(ctx, nil, other)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
}

// Review fix: TextualChange.Transform must report unconditional Conflict
// against any non-textual change kind, regardless of path.
func TestTextualChange_TransformConflictsUnconditionallyWithNonTextual(t *testing.T) {
	ctx := context.Background()
	c := &TextualChange{FilePath: "a.c", FromLine: 0, ToLine: 1, Content: []string{"x\n"}}

	others := []Change{
		&FileAdded{FileName: "unrelated.c", Content: []string{"y\n"}},
		&FileDeleted{FileName: "unrelated.c", Content: []string{"y\n"}},
		&FileRenamed{FromName: "unrelated.c", ToName: "also-unrelated.c"},
	}
	for _, other := range others {
		_, err := c.Transform(ctx, nil, other)
		require.Error(t, err)
		assert.True(t, core.IsConflict(err), "expected Conflict for other=%T", other)
	}
}

// S4: textual fallback. Replacing a run of lines wholesale round-trips
// through Apply.
func TestTextualChange_Apply(t *testing.T) {
	ctx := context.Background()
	state := newState(t, "a.c", []byte("/// one\n/// two\n/// three\n"))
	c := &TextualChange{
		FilePath: "a.c",
		FromLine: 0,
		ToLine:   3,
		Content:  []string{"// one\n", "// two\n", "// three\n"},
	}
	require.NoError(t, c.Apply(ctx, state))
	got, err := state.Get("a.c")
	require.NoError(t, err)
	assert.Equal(t, "// one\n// two\n// three\n", string(got))
}

func TestTextualChange_EncodeDecodeRoundTrip(t *testing.T) {
	c := &TextualChange{FilePath: "a.c", FromLine: 1, ToLine: 4, Content: []string{"// one\n", "// two\n", "// three\n"}}
	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

package change

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
	"github.com/smartgit-oss/semalog/internal/semalog/subastdetect"
)

func detectSingleInsertion(t *testing.T, fileName string, oldSrc, newSrc string) *SubASTInserted {
	t.Helper()
	ctx := context.Background()
	parser := parsing.NewParser(nil)
	oldTU, err := parser.Parse(ctx, fileName, []byte(oldSrc))
	require.NoError(t, err)
	newTU, err := parser.Parse(ctx, fileName, []byte(newSrc))
	require.NoError(t, err)
	insertions := subastdetect.Detect(fileName, oldTU, newTU)
	require.Len(t, insertions, 1)
	return insertions[0]
}

// Property 6, restricted to one change kind: detection is closed. Applying
// a detected SubASTInserted to the prior state reproduces the new state
// byte-for-byte.
func TestSubASTInserted_ApplyReproducesDetectedState(t *testing.T) {
	ctx := context.Background()
	// Kept free of inter-statement whitespace so the inserted subtree's own
	// extent, with nothing trimmed around it, is exactly the bytes needed to
	// reproduce the new file by straight concatenation.
	const original = "int main(){int a=0;return a;}"
	const withStatement = "int main(){int a=0;a+=1;return a;}"

	insertion := detectSingleInsertion(t, "a.c", original, withStatement)

	state := reposstate.NewSingleFileState(parsing.NewParser(nil), "a.c", []byte(original))
	require.NoError(t, insertion.Apply(ctx, state))

	got, err := state.Get("a.c")
	require.NoError(t, err)
	assert.Equal(t, withStatement, string(got))
}

// S3: top-level function insertion. A whole new function landing before an
// existing one is detected as a single SubASTInserted at the translation
// unit's top level and reproduces the new file on Apply.
func TestSubASTInserted_TopLevelFunctionInsertion(t *testing.T) {
	ctx := context.Background()
	const original = "int main(){}"
	const withFoo = "int foo(){}int main(){}"

	insertion := detectSingleInsertion(t, "a.c", original, withFoo)
	assert.False(t, insertion.HasPredecessor)

	state := reposstate.NewSingleFileState(parsing.NewParser(nil), "a.c", []byte(original))
	require.NoError(t, insertion.Apply(ctx, state))

	got, err := state.Get("a.c")
	require.NoError(t, err)
	assert.Equal(t, withFoo, string(got))
}

func TestSubASTInserted_TransformDisjointFileIsIdentity(t *testing.T) {
	ctx := context.Background()
	c := detectSingleInsertion(t, "a.c", "int main(){}", "int foo(){}int main(){}")
	other := &FileAdded{FileName: "unrelated.c", Content: []string{"int x;\n"}}

	got, err := c.Transform(ctx, nil, other)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSubASTInserted_EncodeDecodeRoundTrip(t *testing.T) {
	c := detectSingleInsertion(t, "a.c", "int main(){}", "int foo(){}int main(){}")
	data, err := Encode(c)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

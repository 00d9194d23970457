package subastdetect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

func parse(t *testing.T, fileName, src string) *parsing.TranslationUnit {
	t.Helper()
	tu, err := parsing.NewParser(nil).Parse(context.Background(), fileName, []byte(src))
	require.NoError(t, err)
	return tu
}

func TestDetect_NoChangeFindsNothing(t *testing.T) {
	src := "int main(){int a=0;return a;}"
	oldTU := parse(t, "a.c", src)
	newTU := parse(t, "a.c", src)

	assert.Empty(t, Detect("a.c", oldTU, newTU))
}

// S3: top-level function insertion, no predecessor.
func TestDetect_TopLevelInsertionHasNoPredecessor(t *testing.T) {
	oldTU := parse(t, "a.c", "int main(){}")
	newTU := parse(t, "a.c", "int foo(){}int main(){}")

	got := Detect("a.c", oldTU, newTU)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasPredecessor)
	assert.Equal(t, "a.c", got[0].ParentPath.File())
}

// An inserted statement between two existing ones carries the preceding
// statement as its predecessor.
func TestDetect_MidInsertionHasPredecessor(t *testing.T) {
	oldTU := parse(t, "a.c", "int main(){int a=0;return a;}")
	newTU := parse(t, "a.c", "int main(){int a=0;a+=1;return a;}")

	got := Detect("a.c", oldTU, newTU)
	require.Len(t, got, 1)
	assert.True(t, got[0].HasPredecessor)
	extent := joinLinesForTest(got[0].FileLines)[got[0].From:got[0].To]
	assert.Equal(t, "a+=1;", extent)
}

func joinLinesForTest(lines []string) string {
	var out string
	for _, l := range lines {
		out += l
	}
	return out
}

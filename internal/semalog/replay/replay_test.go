package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/ledger"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/renamedetect"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
	"github.com/smartgit-oss/semalog/internal/semalog/subastdetect"
)

func parseFile(t *testing.T, fileName, src string) *parsing.TranslationUnit {
	t.Helper()
	tu, err := parsing.NewParser(nil).Parse(context.Background(), fileName, []byte(src))
	require.NoError(t, err)
	return tu
}

// S5: rename/insert merge, the defining case. Branch "master" renames a to
// b; branch "other" inserts a+=1; between the declaration and the return.
// Merging either branch into the other must transform the insertion's
// captured bytes through the rename and land on the same final file,
// regardless of merge direction.
func TestReplay_RenameInsertMerge(t *testing.T) {
	ctx := context.Background()
	const original = "int main(){int a=0;return a;}"
	const renamed = "int main(){int b=0;return b;}"
	const inserted = "int main(){int a=0;a+=1;return a;}"
	const wantFinal = "int main(){int b=0;b+=1;return b;}"

	oldTU := parseFile(t, "a.c", original)

	renameTU := parseFile(t, "a.c", renamed)
	renames := renamedetect.Detect(ctx, "a.c", oldTU, renameTU)
	require.Len(t, renames, 1)
	var renameChange change.Change = renames[0]

	insertTU := parseFile(t, "a.c", inserted)
	insertions := subastdetect.Detect("a.c", oldTU, insertTU)
	require.Len(t, insertions, 1)
	var insertChange change.Change = insertions[0]

	t.Run("merge other into master", func(t *testing.T) {
		state := reposstate.NewSingleFileState(parsing.NewParser(nil), "a.c", []byte(renamed))
		replayed, err := Replay(ctx, state, []change.Change{renameChange}, []change.Change{insertChange})
		require.NoError(t, err)
		assert.Len(t, replayed, 1)

		got, err := state.Get("a.c")
		require.NoError(t, err)
		assert.Equal(t, wantFinal, string(got))
	})

	t.Run("merge master into other", func(t *testing.T) {
		state := reposstate.NewSingleFileState(parsing.NewParser(nil), "a.c", []byte(inserted))
		replayed, err := Replay(ctx, state, []change.Change{insertChange}, []change.Change{renameChange})
		require.NoError(t, err)
		assert.Len(t, replayed, 1)

		got, err := state.Get("a.c")
		require.NoError(t, err)
		assert.Equal(t, wantFinal, string(got))
	})
}

// S6: delete-of-rename. Branch X deletes a.c; branch Y renames a.c to b.c.
// Rebasing X's delete through Y's rename retargets the delete at b.c.
func TestReplay_DeleteOfRename(t *testing.T) {
	ctx := context.Background()
	content := []byte("int a;")
	state := reposstate.NewSingleFileState(parsing.NewParser(nil), "b.c", content)

	del := &change.FileDeleted{FileName: "a.c", Content: []string{"int a;"}}
	rename := &change.FileRenamed{FromName: "a.c", ToName: "b.c"}

	replayed, err := Replay(ctx, state, []change.Change{rename}, []change.Change{del})
	require.NoError(t, err)
	require.Len(t, replayed, 1)

	rewritten, ok := replayed[0].(*change.FileDeleted)
	require.True(t, ok)
	assert.Equal(t, "b.c", rewritten.FileName)

	_, err = state.Get("b.c")
	assert.Error(t, err, "b.c should have been deleted by the replayed change")
}

func TestReplayEntry_PicksMaxIndexPlusOne(t *testing.T) {
	ctx := context.Background()
	state := reposstate.NewSingleFileState(parsing.NewParser(nil), "a.c", []byte("int a;"))

	localEntries := []ledger.Entry{{Index: 0, Changes: nil}, {Index: 3, Changes: nil}}
	incomingEntries := []ledger.Entry{
		{Index: 0, Changes: []change.Change{&change.FileAdded{FileName: "a.c", Content: []string{"int a;"}}}},
	}

	entry, err := ReplayEntry(ctx, state, localEntries, incomingEntries)
	require.NoError(t, err)
	assert.Equal(t, 4, entry.Index)
	require.Len(t, entry.Changes, 1)
}

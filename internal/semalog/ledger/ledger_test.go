package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
)

func TestAppendLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{
		{Index: 0, Changes: []change.Change{&change.FileAdded{FileName: "a.c", Content: []string{"int a;\n"}}}},
		{Index: 1, Changes: []change.Change{&change.FileRenamed{FromName: "a.c", ToName: "b.c"}}},
	}
	for _, e := range entries {
		require.NoError(t, Append(&buf, e))
	}

	got, err := Load(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entries, got)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	r := strings.NewReader("\n0 []\n\n1 []\n")
	got, err := Load(r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 1, got[1].Index)
}

func TestLoadMalformedLineMissingSpace(t *testing.T) {
	_, err := Load(strings.NewReader("noSpaceHere"))
	assert.Error(t, err)
}

func TestLoadMalformedLineBadIndex(t *testing.T) {
	_, err := Load(strings.NewReader("notanumber []"))
	assert.Error(t, err)
}

func TestLoadMalformedLineBadPayload(t *testing.T) {
	_, err := Load(strings.NewReader("0 not-json"))
	assert.Error(t, err)
}

func TestNextIndex(t *testing.T) {
	assert.Equal(t, 0, NextIndex(nil))
	assert.Equal(t, 0, NextIndex([]Entry{}))
	assert.Equal(t, 4, NextIndex([]Entry{{Index: 0}, {Index: 3}, {Index: 1}}))
}

package astpath

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

func TestPath_EqualAndHash(t *testing.T) {
	a := New("a.c", NewSpellingElement("main"), NewKindOrdinalElement("COMPOUND_STMT", 0))
	b := New("a.c", NewSpellingElement("main"), NewKindOrdinalElement("COMPOUND_STMT", 0))
	c := New("a.c", NewSpellingElement("main"), NewKindOrdinalElement("COMPOUND_STMT", 1))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestPath_WithFileAndDropLast(t *testing.T) {
	p := New("a.c", NewSpellingElement("main"), NewSpellingElement("a"))

	renamed := p.WithFile("b.c")
	assert.Equal(t, "b.c", renamed.File())
	assert.Equal(t, p.Elements(), renamed.Elements())

	dropped := p.DropLast(1)
	assert.Equal(t, 1, dropped.Len())
	assert.Equal(t, "a.c", dropped.File())
}

// Property 5 restricted to astpath: JSON round-trip for both spelling and
// (kind, ordinal) elements.
func TestPath_MarshalUnmarshalRoundTrip(t *testing.T) {
	p := New("a.c",
		NewSpellingElement("main"),
		NewKindOrdinalElement("COMPOUND_STMT", 0),
		NewSpellingElement("a"),
	)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got Path
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, p.Equal(got))
}

func TestPath_MarshalJSONShape(t *testing.T) {
	p := New("a.c", NewSpellingElement("main"), NewKindOrdinalElement("COMPOUND_STMT", 0))
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `["a.c", "main", ["COMPOUND_STMT", 0]]`, string(data))
}

func TestPath_Locate(t *testing.T) {
	ctx := context.Background()
	parser := parsing.NewParser(nil)
	tu, err := parser.Parse(ctx, "a.c", []byte("int main(){int a=0;return a;}"))
	require.NoError(t, err)

	mainPath := New("a.c", NewSpellingElement("main"))
	cursor, err := mainPath.Locate(tu)
	require.NoError(t, err)
	assert.Equal(t, "main", cursor.Displayname())
}

func TestPath_LocateUnresolved(t *testing.T) {
	ctx := context.Background()
	parser := parsing.NewParser(nil)
	tu, err := parser.Parse(ctx, "a.c", []byte("int main(){}"))
	require.NoError(t, err)

	missing := New("a.c", NewSpellingElement("does_not_exist"))
	_, err = missing.Locate(tu)
	assert.Error(t, err)
}

func TestPath_LocateWrongFileRejected(t *testing.T) {
	ctx := context.Background()
	parser := parsing.NewParser(nil)
	tu, err := parser.Parse(ctx, "a.c", []byte("int main(){}"))
	require.NoError(t, err)

	p := New("b.c", NewSpellingElement("main"))
	_, err = p.Locate(tu)
	assert.Error(t, err)
}

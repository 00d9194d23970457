package gitadapter

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobCache_GetCachesContent(t *testing.T) {
	storer := memory.NewStorage()
	hash := storeBlob(t, storer, []byte("int a;\n"))

	cache := NewBlobCache(storer)
	got, err := cache.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, "int a;\n", string(got))

	// A second Get for the same hash returns the same bytes without erroring.
	got2, err := cache.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, got, got2)
}

func TestBlobCache_GetMissingHash(t *testing.T) {
	storer := memory.NewStorage()
	cache := NewBlobCache(storer)
	_, err := cache.Get(plumbing.NewHash("0000000000000000000000000000000000000000"))
	assert.Error(t, err)
}

package gitadapter

import (
	"bytes"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// BlobCache memoizes blob reads for the duration of one detection run, the
// same scoped-handle lifetime the object-store resource model calls for.
// Safe for concurrent use: the Detection Driver reads blobs for independent
// files from a bounded worker pool.
type BlobCache struct {
	storer storer.EncodedObjectStorer
	mu     sync.Mutex
	cache  map[plumbing.Hash][]byte
}

// NewBlobCache builds an empty cache reading from storer.
func NewBlobCache(storer storer.EncodedObjectStorer) *BlobCache {
	return &BlobCache{storer: storer, cache: map[plumbing.Hash][]byte{}}
}

// Get returns the blob content for hash, reading and caching it on first use.
func (b *BlobCache) Get(hash plumbing.Hash) ([]byte, error) {
	b.mu.Lock()
	if data, ok := b.cache[hash]; ok {
		b.mu.Unlock()
		return data, nil
	}
	b.mu.Unlock()

	obj, err := b.storer.EncodedObject(plumbing.BlobObject, hash)
	if err != nil {
		return nil, core.NewStoreError("read blob", err)
	}
	blob := &object.Blob{}
	if err := blob.Decode(obj); err != nil {
		return nil, core.NewStoreError("decode blob", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, core.NewStoreError("read blob", err)
	}
	defer reader.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, core.NewStoreError("read blob", err)
	}
	data := buf.Bytes()

	b.mu.Lock()
	b.cache[hash] = data
	b.mu.Unlock()
	return data, nil
}

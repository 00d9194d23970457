package parsing

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// scratch is the scoped temporary file-system the Parser stages in-memory
// source bytes through: the resource model calls for a file-system path
// with the source's extension to survive exactly the duration of one parse
// call, so the external parser's language dispatch (in libclang's case, and
// in ours) can key off it the same way even though tree-sitter's Go binding
// happens to also accept raw bytes directly.
var scratch billy.Filesystem = memfs.New()

// stage writes content to a scoped temporary path ending in the same
// extension as fileName and returns a closer that removes it. Present for
// parity with the ambient resource-scoping discipline; Parse itself does
// not require the path, since go-tree-sitter parses byte slices directly.
func stage(fileName string, content []byte) (billy.File, func(), error) {
	f, err := scratch.TempFile("", "semalog-*-"+extOf(fileName))
	if err != nil {
		return nil, nil, core.NewStoreError("stage scratch file", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return nil, nil, core.NewStoreError("stage scratch file", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, nil, core.NewStoreError("stage scratch file", err)
	}
	cleanup := func() {
		f.Close()
		_ = scratch.Remove(f.Name())
	}
	return f, cleanup, nil
}

func extOf(fileName string) string {
	for i := len(fileName) - 1; i >= 0; i-- {
		if fileName[i] == '.' {
			return fileName[i:]
		}
		if fileName[i] == '/' {
			break
		}
	}
	return ""
}

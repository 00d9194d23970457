// Package reposstate implements the Repo-State abstraction (component B):
// a simple get/set/delete/rename view over a file tree, backed either by a
// git object tree (content-addressed, one immutable tree per mutation) or by
// a single in-memory file overlay that the change algebra's Transform
// methods use to re-detect edits on one file.
package reposstate

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

// State is the Repo-State contract every detector and change Apply method is
// written against: get/set/delete/rename files by path, and a read-only AST
// projection over the current content of a file.
type State interface {
	Get(fileName string) ([]byte, error)
	Set(fileName string, content []byte) error
	Delete(fileName string) error
	Rename(fromName, toName string) error
	AST(ctx context.Context, fileName string) (*parsing.TranslationUnit, error)
	// Files lists every path currently present, sorted.
	Files() []string
}

// base holds the parser shared by every State implementation's ast() method.
type base struct {
	parser *parsing.Parser
}

func (b base) astFrom(ctx context.Context, fileName string, content []byte) (*parsing.TranslationUnit, error) {
	return b.parser.Parse(ctx, fileName, content)
}

// SingleFileState overlays exactly one file name, matching the Python
// prototype's SingleFileRepoState. The change algebra's Transform methods use
// it to re-detect edits on one file; the detection driver does not use it.
type SingleFileState struct {
	base
	path    string
	content []byte
	present bool
}

// NewSingleFileState builds a SingleFileState addressing only path.
func NewSingleFileState(parser *parsing.Parser, path string, content []byte) *SingleFileState {
	return &SingleFileState{base: base{parser: parser}, path: path, content: content, present: content != nil}
}

func (s *SingleFileState) Get(fileName string) ([]byte, error) {
	if fileName != s.path {
		return nil, core.NewStoreError("get", errNotSupported(fileName, s.path))
	}
	if !s.present {
		return nil, core.NewStoreError("get", errNotFound(fileName))
	}
	return s.content, nil
}

func (s *SingleFileState) Set(fileName string, content []byte) error {
	if fileName != s.path {
		return core.NewStoreError("set", errNotSupported(fileName, s.path))
	}
	s.content = content
	s.present = true
	return nil
}

func (s *SingleFileState) Delete(fileName string) error {
	if fileName != s.path {
		return core.NewStoreError("delete", errNotSupported(fileName, s.path))
	}
	s.content = nil
	s.present = false
	return nil
}

func (s *SingleFileState) Rename(fromName, toName string) error {
	return core.NewStoreError("rename", errNotSupportedOp("renaming", "SingleFileState"))
}

func (s *SingleFileState) AST(ctx context.Context, fileName string) (*parsing.TranslationUnit, error) {
	content, err := s.Get(fileName)
	if err != nil {
		return nil, err
	}
	return s.astFrom(ctx, fileName, content)
}

func (s *SingleFileState) Files() []string {
	if !s.present {
		return nil
	}
	return []string{s.path}
}

// TreeBackedState is a content-addressed Repo-State backed by a go-git
// object.Tree: every mutation writes new blob/tree objects to the Storer and
// replaces the in-memory root hash, the same immutable-tree-per-edit
// discipline the Python prototype's TreeBackedRepoState follows over GitPython.
type TreeBackedState struct {
	base
	storer storer.EncodedObjectStorer
	root   plumbing.Hash
}

// NewTreeBackedState wraps an existing tree hash for reading and mutation.
func NewTreeBackedState(parser *parsing.Parser, storer storer.EncodedObjectStorer, root plumbing.Hash) *TreeBackedState {
	return &TreeBackedState{base: base{parser: parser}, storer: storer, root: root}
}

// Root returns the current tree hash, e.g. to record as a commit's tree.
func (s *TreeBackedState) Root() plumbing.Hash { return s.root }

func (s *TreeBackedState) loadTree() (*object.Tree, error) {
	if s.root.IsZero() {
		return &object.Tree{}, nil
	}
	tree := &object.Tree{}
	obj, err := s.storer.EncodedObject(plumbing.TreeObject, s.root)
	if err != nil {
		return nil, core.NewStoreError("load tree", err)
	}
	if err := tree.Decode(obj); err != nil {
		return nil, core.NewStoreError("decode tree", err)
	}
	return tree, nil
}

func (s *TreeBackedState) Get(fileName string) ([]byte, error) {
	tree, err := s.loadTree()
	if err != nil {
		return nil, err
	}
	entry, err := tree.FindEntry(fileName)
	if err != nil {
		return nil, core.NewStoreError("get "+fileName, err)
	}
	blobObj, err := s.storer.EncodedObject(plumbing.BlobObject, entry.Hash)
	if err != nil {
		return nil, core.NewStoreError("get "+fileName, err)
	}
	blob := &object.Blob{}
	if err := blob.Decode(blobObj); err != nil {
		return nil, core.NewStoreError("get "+fileName, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, core.NewStoreError("get "+fileName, err)
	}
	defer reader.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, core.NewStoreError("get "+fileName, err)
	}
	return buf.Bytes(), nil
}

func (s *TreeBackedState) Set(fileName string, content []byte) error {
	hash, err := s.writeBlob(content)
	if err != nil {
		return err
	}
	return s.mutate(func(entries map[string]plumbing.Hash) {
		entries[fileName] = hash
	})
}

func (s *TreeBackedState) Delete(fileName string) error {
	return s.mutate(func(entries map[string]plumbing.Hash) {
		delete(entries, fileName)
	})
}

func (s *TreeBackedState) Rename(fromName, toName string) error {
	content, err := s.Get(fromName)
	if err != nil {
		return err
	}
	hash, err := s.writeBlob(content)
	if err != nil {
		return err
	}
	return s.mutate(func(entries map[string]plumbing.Hash) {
		delete(entries, fromName)
		entries[toName] = hash
	})
}

func (s *TreeBackedState) AST(ctx context.Context, fileName string) (*parsing.TranslationUnit, error) {
	content, err := s.Get(fileName)
	if err != nil {
		return nil, err
	}
	return s.astFrom(ctx, fileName, content)
}

func (s *TreeBackedState) Files() []string {
	entries, err := s.flatten()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flatten walks the current tree into a flat path -> blob hash map. Trees
// this small (single translation units and their immediate neighbors) make
// the flatten/rebuild round trip cheap enough to avoid a full path-segment
// tree-splicing implementation, at the cost of not sharing unmodified
// subtrees across mutations the way a real git write path would.
func (s *TreeBackedState) flatten() (map[string]plumbing.Hash, error) {
	tree, err := s.loadTree()
	if err != nil {
		return nil, err
	}
	entries := map[string]plumbing.Hash{}
	walker := object.NewTreeWalker(tree, true, map[plumbing.Hash]bool{})
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err != nil {
			break
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		entries[name] = entry.Hash
	}
	return entries, nil
}

func (s *TreeBackedState) mutate(edit func(entries map[string]plumbing.Hash)) error {
	entries, err := s.flatten()
	if err != nil {
		return err
	}
	edit(entries)
	hash, err := s.writeTree(entries)
	if err != nil {
		return err
	}
	s.root = hash
	return nil
}

func (s *TreeBackedState) writeBlob(content []byte) (plumbing.Hash, error) {
	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, core.NewStoreError("write blob", err)
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return plumbing.ZeroHash, core.NewStoreError("write blob", err)
	}
	w.Close()
	hash, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, core.NewStoreError("write blob", err)
	}
	return hash, nil
}

// writeTree rebuilds a directory hierarchy from a flat path->blob map and
// writes every directory level bottom-up, content-addressed the way git
// always materializes trees: identical directory content always yields the
// identical tree hash.
func (s *TreeBackedState) writeTree(entries map[string]plumbing.Hash) (plumbing.Hash, error) {
	type dirNode struct {
		files map[string]plumbing.Hash
		dirs  map[string]*dirNode
	}
	root := &dirNode{files: map[string]plumbing.Hash{}, dirs: map[string]*dirNode{}}
	for path, hash := range entries {
		segments := strings.Split(path, "/")
		node := root
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node.dirs[seg]
			if !ok {
				child = &dirNode{files: map[string]plumbing.Hash{}, dirs: map[string]*dirNode{}}
				node.dirs[seg] = child
			}
			node = child
		}
		node.files[segments[len(segments)-1]] = hash
	}
	var write func(*dirNode) (plumbing.Hash, error)
	write = func(node *dirNode) (plumbing.Hash, error) {
		tree := &object.Tree{}
		names := make([]string, 0, len(node.files)+len(node.dirs))
		for name := range node.files {
			names = append(names, name)
		}
		for name := range node.dirs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if hash, ok := node.files[name]; ok {
				tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: hash})
				continue
			}
			childHash, err := write(node.dirs[name])
			if err != nil {
				return plumbing.ZeroHash, err
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: childHash})
		}
		obj := s.storer.NewEncodedObject()
		obj.SetType(plumbing.TreeObject)
		if err := tree.Encode(obj); err != nil {
			return plumbing.ZeroHash, core.NewStoreError("encode tree", err)
		}
		return s.storer.SetEncodedObject(obj)
	}
	return write(root)
}

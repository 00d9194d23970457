// Package astpath implements the stable AST-Path identifier of component A:
// an ordered sequence (file_name, e1, ..., en) that locates one cursor in a
// translation unit across unrelated sibling edits.
package astpath

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

// Element is either a spelling string or a (kind, ordinal) pair.
type Element struct {
	Spelling string
	Kind     string
	Ordinal  int
	isPair   bool
}

// NewSpellingElement builds a string element.
func NewSpellingElement(spelling string) Element {
	return Element{Spelling: spelling}
}

// NewKindOrdinalElement builds a (kind, ordinal) element.
func NewKindOrdinalElement(kind string, ordinal int) Element {
	return Element{Kind: kind, Ordinal: ordinal, isPair: true}
}

// IsPair reports whether this element addresses by (kind, ordinal) rather than spelling.
func (e Element) IsPair() bool { return e.isPair }

func (e Element) String() string {
	if e.isPair {
		return fmt.Sprintf("%s#%d", e.Kind, e.Ordinal)
	}
	return e.Spelling
}

func (e Element) equal(o Element) bool {
	if e.isPair != o.isPair {
		return false
	}
	if e.isPair {
		return e.Kind == o.Kind && e.Ordinal == o.Ordinal
	}
	return e.Spelling == o.Spelling
}

// Path is the ordered sequence (file_name, e1, ..., en).
type Path struct {
	file     string
	elements []Element
}

// New builds a Path from a file name and the elements following it.
func New(file string, elements ...Element) Path {
	var cp []Element
	if len(elements) > 0 {
		cp = make([]Element, len(elements))
		copy(cp, elements)
	}
	return Path{file: file, elements: cp}
}

// FromCursorLineage builds a Path from the root-to-leaf lineage of cursors,
// using the leaf's displayname as the file anchor is never correct for a
// non-root; callers instead use File + Appended incrementally. FromCursorLineage
// is kept for the common case of building straight from a translation unit's
// root down to a target cursor.
func FromCursorLineage(file string, lineage []parsing.Cursor) Path {
	p := Path{file: file}
	for i := 0; i+1 < len(lineage); i++ {
		p = p.Appended(lineage[i], lineage[i+1])
	}
	return p
}

// File returns the anchoring file name (invariant 1: always a string, always first).
func (p Path) File() string { return p.file }

// Elements returns a defensive copy of the path elements after the file anchor.
func (p Path) Elements() []Element {
	cp := make([]Element, len(p.elements))
	copy(cp, p.elements)
	return cp
}

// Len returns the number of elements after the file anchor.
func (p Path) Len() int { return len(p.elements) }

// ElementFromCursor computes the address of child under parent: child's
// displayname if non-empty, else (kind, ordinal-among-same-kind-siblings).
func ElementFromCursor(parent, child parsing.Cursor) Element {
	if child.Displayname() != "" {
		return NewSpellingElement(child.Displayname())
	}
	ordinal := 0
	for _, sibling := range parent.Children() {
		if sibling.Kind() != child.Kind() {
			continue
		}
		if sibling.Equal(child) {
			break
		}
		ordinal++
	}
	return NewKindOrdinalElement(child.Kind(), ordinal)
}

// Appended returns a new Path with one more element, addressing child under parent.
func (p Path) Appended(parent, child parsing.Cursor) Path {
	return Path{file: p.file, elements: append(append([]Element{}, p.elements...), ElementFromCursor(parent, child))}
}

// AppendedRaw returns a new Path with a raw string element appended (used to
// address synthetic path segments that are not children of an AST cursor,
// e.g. a top-level path anchor under the translation unit).
func (p Path) AppendedRaw(spelling string) Path {
	return Path{file: p.file, elements: append(append([]Element{}, p.elements...), NewSpellingElement(spelling))}
}

// DropLast returns a new Path with the last n elements removed.
func (p Path) DropLast(n int) Path {
	if n > len(p.elements) {
		n = len(p.elements)
	}
	return Path{file: p.file, elements: append([]Element{}, p.elements[:len(p.elements)-n]...)}
}

// WithFile returns a copy of this Path anchored to a different file, keeping
// the same element sequence. Used when a SubASTInserted or VariableRenamed
// change is rebased through a FileRenamed that targets the same file.
func (p Path) WithFile(file string) Path {
	return Path{file: file, elements: append([]Element{}, p.elements...)}
}

// Equal reports structural equality.
func (p Path) Equal(o Path) bool {
	if p.file != o.file || len(p.elements) != len(o.elements) {
		return false
	}
	for i := range p.elements {
		if !p.elements[i].equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// Hash returns a stable hash of the path, suitable for set/map keys.
func (p Path) Hash() string {
	var b strings.Builder
	b.WriteString(p.file)
	for _, e := range p.elements {
		b.WriteByte('\x1f')
		b.WriteString(e.String())
	}
	return b.String()
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.file)
	b.WriteByte(':')
	for i, e := range p.elements {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.String())
	}
	return b.String()
}

// Locate resolves this Path against a translation unit, starting from its
// root cursor. Fails with PathUnresolved on zero matches, PathAmbiguous on
// more than one string match.
func (p Path) Locate(tu *parsing.TranslationUnit) (parsing.Cursor, error) {
	if tu.FileName() != p.file {
		return parsing.Cursor{}, fmt.Errorf("path anchors to file %q, translation unit is %q", p.file, tu.FileName())
	}
	current := tu.Root()
	for _, element := range p.elements {
		candidates := matchElement(current, element)
		if len(candidates) == 0 {
			return parsing.Cursor{}, core.NewPathUnresolved(p, element)
		}
		if !element.IsPair() && len(candidates) > 1 {
			return parsing.Cursor{}, core.NewPathAmbiguous(p, element)
		}
		current = candidates[0]
	}
	return current, nil
}

func matchElement(parent parsing.Cursor, element Element) []parsing.Cursor {
	if !element.IsPair() {
		var matches []parsing.Cursor
		for _, child := range parent.Children() {
			if child.Displayname() == element.Spelling {
				matches = append(matches, child)
			}
		}
		return matches
	}
	var ofKind []parsing.Cursor
	for _, child := range parent.Children() {
		if child.Kind() == element.Kind {
			ofKind = append(ofKind, child)
		}
	}
	if element.Ordinal >= len(ofKind) {
		return nil
	}
	return []parsing.Cursor{ofKind[element.Ordinal]}
}

// MarshalJSON renders the path as a flat JSON array: [file, e1, ..., en].
func (p Path) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, 0, len(p.elements)+1)
	items = append(items, p.file)
	for _, e := range p.elements {
		if e.IsPair() {
			items = append(items, []interface{}{e.Kind, e.Ordinal})
		} else {
			items = append(items, e.Spelling)
		}
	}
	return json.Marshal(items)
}

// UnmarshalJSON restores a path from its flat JSON array encoding.
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("astpath: empty JSON array, missing file element")
	}
	if err := json.Unmarshal(raw[0], &p.file); err != nil {
		return fmt.Errorf("astpath: leading element must be the file name string: %w", err)
	}
	p.elements = p.elements[:0]
	for _, item := range raw[1:] {
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			p.elements = append(p.elements, NewSpellingElement(asString))
			continue
		}
		var pair [2]json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil {
			return fmt.Errorf("astpath: element is neither a string nor a [kind, ordinal] pair: %w", err)
		}
		var kind string
		var ordinal int
		if err := json.Unmarshal(pair[0], &kind); err != nil {
			return fmt.Errorf("astpath: pair kind must be a string: %w", err)
		}
		if err := json.Unmarshal(pair[1], &ordinal); err != nil {
			return fmt.Errorf("astpath: pair ordinal must be an int: %w", err)
		}
		p.elements = append(p.elements, NewKindOrdinalElement(kind, ordinal))
	}
	return nil
}

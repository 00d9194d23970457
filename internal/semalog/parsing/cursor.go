// Package parsing is the Parser Adapter (component I): it wraps tree-sitter's
// C and C++ grammars behind a libclang-flavored Cursor/TranslationUnit
// contract, so the rest of semalog can be written against cursor kinds,
// spellings and source extents without depending on a parser backend.
package parsing

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Point is a (line, column) source location, 1-based line, 0-based column,
// matching libclang's SourceLocation.
type Point struct {
	Line   int
	Column int
	Offset int
}

// Extent is a half-open [Start, End) source range.
type Extent struct {
	Start Point
	End   Point
}

// Cursor is one AST node: a libclang-style view over a tree-sitter node.
// It is a value type; two Cursors are Equal if they address the same
// underlying tree-sitter node in the same translation unit.
type Cursor struct {
	tu   *TranslationUnit
	node *sitter.Node
}

// Kind returns the libclang-flavored cursor kind (see kinds.go), translated
// from the tree-sitter node type.
func (c Cursor) Kind() string {
	if c.node == nil {
		return ""
	}
	return translateKind(c.node.Type())
}

// RawType returns the underlying tree-sitter node type, untranslated. Used
// by detectors that need grammar-level detail the kind vocabulary collapses.
func (c Cursor) RawType() string {
	if c.node == nil {
		return ""
	}
	return c.node.Type()
}

// IsNull reports whether this Cursor addresses no node.
func (c Cursor) IsNull() bool { return c.node == nil }

// Spelling returns the node's literal source text for leaf-like nodes
// (identifiers, literals); for composite nodes it is usually empty.
func (c Cursor) Spelling() string {
	if c.node == nil {
		return ""
	}
	switch c.node.Type() {
	case "identifier", "field_identifier", "type_identifier", "primitive_type",
		"number_literal", "string_literal", "char_literal":
		return c.node.Content(c.tu.source)
	}
	return ""
}

// Displayname returns the name a human would use to refer to this cursor:
// the declared identifier for declarations, the referenced name for
// references, and the bare spelling for literals. Empty when the cursor has
// no natural name (e.g. a COMPOUND_STMT), matching libclang's
// Cursor.displayname semantics closely enough for AST-Path addressing.
func (c Cursor) Displayname() string {
	if c.node == nil {
		return ""
	}
	if name := c.node.ChildByFieldName("name"); name != nil {
		return identifierText(name, c.tu.source)
	}
	if name := c.node.ChildByFieldName("declarator"); name != nil {
		if spelling := innermostIdentifier(name, c.tu.source); spelling != "" {
			return spelling
		}
	}
	switch c.node.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return c.node.Content(c.tu.source)
	}
	return ""
}

func identifierText(n *sitter.Node, source []byte) string {
	if spelling := innermostIdentifier(n, source); spelling != "" {
		return spelling
	}
	return n.Content(source)
}

// NameCursor returns the Cursor addressing this declaration's identifier leaf
// node directly (as opposed to Displayname, which returns its text), so
// callers can read its precise source extent for in-place text edits.
func (c Cursor) NameCursor() Cursor {
	if c.node == nil {
		return Cursor{}
	}
	if name := c.node.ChildByFieldName("name"); name != nil {
		if leaf := innermostIdentifierNode(name); leaf != nil {
			return Cursor{tu: c.tu, node: leaf}
		}
		return Cursor{tu: c.tu, node: name}
	}
	if name := c.node.ChildByFieldName("declarator"); name != nil {
		if leaf := innermostIdentifierNode(name); leaf != nil {
			return Cursor{tu: c.tu, node: leaf}
		}
	}
	switch c.node.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return c
	}
	return Cursor{}
}

func innermostIdentifierNode(n *sitter.Node) *sitter.Node {
	for n != nil && !n.IsNull() {
		switch n.Type() {
		case "identifier", "field_identifier":
			return n
		case "pointer_declarator", "array_declarator", "function_declarator",
			"parenthesized_declarator", "init_declarator":
			if decl := n.ChildByFieldName("declarator"); decl != nil {
				n = decl
				continue
			}
		}
		return nil
	}
	return nil
}

// innermostIdentifier walks a declarator (which may be wrapped in pointer,
// array or function declarator nodes) down to its identifier leaf.
func innermostIdentifier(n *sitter.Node, source []byte) string {
	for n != nil && !n.IsNull() {
		switch n.Type() {
		case "identifier", "field_identifier":
			return n.Content(source)
		case "pointer_declarator", "array_declarator", "function_declarator",
			"parenthesized_declarator", "init_declarator":
			if decl := n.ChildByFieldName("declarator"); decl != nil {
				n = decl
				continue
			}
		}
		return ""
	}
	return ""
}

// TypeSpelling returns the declared type's source text for a declaration
// cursor, used by the rename detector to confirm a renamed variable kept
// its type.
func (c Cursor) TypeSpelling() string {
	if c.node == nil {
		return ""
	}
	if t := c.node.ChildByFieldName("type"); t != nil {
		return t.Content(c.tu.source)
	}
	return ""
}

// Location returns the cursor's start location.
func (c Cursor) Location() Point {
	if c.node == nil {
		return Point{}
	}
	p := c.node.StartPoint()
	return Point{Line: int(p.Row) + 1, Column: int(p.Column), Offset: int(c.node.StartByte())}
}

// Extent returns the cursor's full source range.
func (c Cursor) Extent() Extent {
	if c.node == nil {
		return Extent{}
	}
	start := c.node.StartPoint()
	end := c.node.EndPoint()
	return Extent{
		Start: Point{Line: int(start.Row) + 1, Column: int(start.Column), Offset: int(c.node.StartByte())},
		End:   Point{Line: int(end.Row) + 1, Column: int(end.Column), Offset: int(c.node.EndByte())},
	}
}

// Text returns the verbatim source text spanned by this cursor.
func (c Cursor) Text() string {
	if c.node == nil {
		return ""
	}
	return c.node.Content(c.tu.source)
}

// Children returns the named children of this cursor, in source order,
// matching libclang's Cursor.get_children() (unnamed syntax like punctuation
// is skipped, same as clang.cindex's default walk).
func (c Cursor) Children() []Cursor {
	if c.node == nil {
		return nil
	}
	n := int(c.node.NamedChildCount())
	out := make([]Cursor, 0, n)
	for i := 0; i < n; i++ {
		child := c.node.NamedChild(i)
		if child == nil || child.IsNull() {
			continue
		}
		out = append(out, Cursor{tu: c.tu, node: child})
	}
	return out
}

// Parent returns the enclosing cursor, or a null Cursor at the root.
func (c Cursor) Parent() Cursor {
	if c.node == nil {
		return Cursor{}
	}
	p := c.node.Parent()
	if p == nil || p.IsNull() {
		return Cursor{}
	}
	return Cursor{tu: c.tu, node: p}
}

// Equal reports whether c and o address the same node of the same
// translation unit, by byte range and grammar type (tree-sitter nodes are
// not comparable by pointer identity across walks of the same tree in all
// backends, so this compares structurally by position).
func (c Cursor) Equal(o Cursor) bool {
	if c.node == nil || o.node == nil {
		return c.node == o.node
	}
	return c.tu == o.tu &&
		c.node.StartByte() == o.node.StartByte() &&
		c.node.EndByte() == o.node.EndByte() &&
		c.node.Type() == o.node.Type()
}

// Tokens returns the leaf tokens spanned by this cursor, named and unnamed
// (punctuation included), in source order, matching libclang's
// Cursor.get_tokens().
func (c Cursor) Tokens() []string {
	if c.node == nil {
		return nil
	}
	var tokens []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || n.IsNull() {
			return
		}
		if n.ChildCount() == 0 {
			text := n.Content(c.tu.source)
			if text != "" {
				tokens = append(tokens, text)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(c.node)
	return tokens
}

// GetDefinition resolves a reference cursor (DECL_REF_EXPR-kinded) to the
// declaration it refers to, by walking lexical scopes outward from the
// reference and matching on spelling. This is a heuristic: tree-sitter has
// no semantic binding, so shadowing across unrelated scopes or through
// macros is not resolved the way libclang's cursor.get_definition() would.
// Returns a null Cursor if no declaration is found in an enclosing scope.
func (c Cursor) GetDefinition() Cursor {
	if c.node == nil || c.Kind() != KindDeclRefExpr {
		return Cursor{}
	}
	name := c.Spelling()
	if name == "" {
		name = c.Text()
	}
	for scope := c.Parent(); !scope.IsNull(); scope = scope.Parent() {
		if decl := findDeclInScope(scope, name); !decl.IsNull() {
			return decl
		}
	}
	return Cursor{}
}

func findDeclInScope(scope Cursor, name string) Cursor {
	for _, child := range scope.Children() {
		switch child.Kind() {
		case KindVarDecl, KindParmDecl, KindFunctionDecl:
			if child.Displayname() == name {
				return child
			}
		case KindDeclStmt:
			for _, decl := range child.Children() {
				if decl.Kind() == KindVarDecl && decl.Displayname() == name {
					return decl
				}
			}
		}
	}
	return Cursor{}
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s(%s)@%d:%d", c.Kind(), c.Displayname(), c.Location().Line, c.Location().Column)
}

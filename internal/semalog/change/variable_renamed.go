package change

import (
	"context"
	"sort"

	"github.com/smartgit-oss/semalog/internal/semalog/astpath"
	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// VariableRenamed renames a variable at its VAR_DECL and every DECL_REF_EXPR
// resolving to it.
type VariableRenamed struct {
	Path    astpath.Path `json:"path"`
	NewName string       `json:"new_name"`
}

func (c *VariableRenamed) Name() string { return NameVariableRenamed }

type replacement struct {
	line     int
	fromCol  int
	toCol    int
	oldWidth int
}

func (c *VariableRenamed) Apply(ctx context.Context, state reposstate.State) error {
	file := c.Path.File()
	tu, err := state.AST(ctx, file)
	if err != nil {
		return err
	}
	defer tu.Close()

	decl, err := c.Path.Locate(tu)
	if err != nil {
		return err
	}
	nameCursor := decl.NameCursor()
	if nameCursor.IsNull() {
		return core.NewPathUnresolved(c.Path, "name")
	}
	oldName := nameCursor.Text()

	var replacements []replacement
	replacements = append(replacements, extentToReplacement(nameCursor))

	var walk func(parsing.Cursor)
	walk = func(cur parsing.Cursor) {
		if cur.Kind() == parsing.KindDeclRefExpr {
			if def := cur.GetDefinition(); !def.IsNull() && def.Equal(decl) {
				replacements = append(replacements, extentToReplacement(cur))
			}
		}
		for _, child := range cur.Children() {
			walk(child)
		}
	}
	walk(tu.Root())

	content, err := state.Get(file)
	if err != nil {
		return err
	}
	lines := splitLines(content)
	sort.Slice(replacements, func(i, j int) bool {
		if replacements[i].line != replacements[j].line {
			return replacements[i].line < replacements[j].line
		}
		return replacements[i].fromCol < replacements[j].fromCol
	})

	byLine := map[int][]replacement{}
	for _, r := range replacements {
		byLine[r.line] = append(byLine[r.line], r)
	}
	for lineNo, reps := range byLine {
		if lineNo < 0 || lineNo >= len(lines) {
			continue
		}
		line := lines[lineNo]
		delta := 0
		for _, r := range reps {
			from := r.fromCol + delta
			to := r.toCol + delta
			if from < 0 || to > len(line) || from > to {
				continue
			}
			line = line[:from] + c.NewName + line[to:]
			delta += len(c.NewName) - (r.toCol - r.fromCol)
		}
		_ = oldName
		lines[lineNo] = line
	}
	return state.Set(file, joinLines(lines))
}

func extentToReplacement(cur parsing.Cursor) replacement {
	ext := cur.Extent()
	return replacement{line: ext.Start.Line - 1, fromCol: ext.Start.Column, toCol: ext.End.Column}
}

func (c *VariableRenamed) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	switch o := other.(type) {
	case *VariableRenamed:
		if o.Path.File() != c.Path.File() {
			return c, nil
		}
		if o.Path.Equal(c.Path) {
			if o.NewName == c.NewName {
				return nil, nil
			}
			return nil, core.NewConflict(c, other)
		}
		if ok, err := c.relocatesAfter(ctx, state, other); err != nil || !ok {
			if err != nil {
				return nil, err
			}
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *SubASTInserted, *TextualChange:
		if !touchesFile(other, c.Path.File()) {
			return c, nil
		}
		ok, err := c.relocatesAfter(ctx, state, other)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *FileAdded:
		return c, nil
	case *FileDeleted:
		if o.FileName == c.Path.File() {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *FileRenamed:
		if o.FromName == c.Path.File() {
			return &VariableRenamed{Path: c.Path.WithFile(o.ToName), NewName: c.NewName}, nil
		}
		return c, nil
	default:
		return c, nil
	}
}

// relocatesAfter checks that c.Path still locates a cursor (of any kind) once
// other has been applied to a single-file overlay of its file, the
// "re-detect in overlay" discipline the spec prescribes for rebasing
// AST-Path-addressed changes through structural edits.
func (c *VariableRenamed) relocatesAfter(ctx context.Context, state reposstate.State, other Change) (bool, error) {
	file := c.Path.File()
	content, err := state.Get(file)
	if err != nil {
		return false, err
	}
	overlay := reposstate.NewSingleFileState(parsing.NewParser(nil), file, content)
	if err := other.Apply(ctx, overlay); err != nil {
		return false, err
	}
	tu, err := overlay.AST(ctx, file)
	if err != nil {
		return false, err
	}
	defer tu.Close()
	if _, err := c.Path.Locate(tu); err != nil {
		return false, nil
	}
	return true, nil
}

package change

import (
	"context"

	"github.com/smartgit-oss/semalog/internal/semalog/astpath"
	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// SubASTInserted inserts a contiguous AST subtree under ParentPath,
// positioned after PredecessorPath (or at head when PredecessorPath is the
// zero Path — see HasPredecessor).
type SubASTInserted struct {
	ParentPath      astpath.Path `json:"parent_path"`
	PredecessorPath astpath.Path `json:"predecessor_path"`
	HasPredecessor  bool         `json:"has_predecessor"`
	From            int          `json:"from"`
	To              int          `json:"to"`
	FileLines       []string     `json:"file_lines"`
	ASTPath         astpath.Path `json:"ast_path"`
}

func (c *SubASTInserted) Name() string { return NameSubASTInserted }

func (c *SubASTInserted) Apply(ctx context.Context, state reposstate.State) error {
	file := c.ParentPath.File()
	tu, err := state.AST(ctx, file)
	if err != nil {
		return err
	}
	defer tu.Close()

	parent, err := c.ParentPath.Locate(tu)
	if err != nil {
		return err
	}

	insertedBytes := joinLines(c.FileLines)
	if c.From >= 0 && c.To <= len(insertedBytes) && c.From <= c.To {
		insertedBytes = insertedBytes[c.From:c.To]
	}

	var insertOffset int
	children := parent.Children()
	if c.HasPredecessor {
		pred, err := c.PredecessorPath.Locate(tu)
		if err != nil {
			return err
		}
		insertOffset = pred.Extent().End.Offset
	} else if len(children) > 0 {
		insertOffset = children[0].Location().Offset
	} else {
		return core.NewUnsupportedInsertion(c.ParentPath)
	}

	current := tu.Source()
	merged := make([]byte, 0, len(current)+len(insertedBytes))
	merged = append(merged, current[:insertOffset]...)
	merged = append(merged, insertedBytes...)
	merged = append(merged, current[insertOffset:]...)

	return state.Set(file, merged)
}

func (c *SubASTInserted) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	file := c.ParentPath.File()
	switch o := other.(type) {
	case *FileAdded:
		return c, nil
	case *FileDeleted:
		return c, nil
	case *FileRenamed:
		if o.FromName == file {
			return &SubASTInserted{
				ParentPath:      c.ParentPath.WithFile(o.ToName),
				PredecessorPath: c.PredecessorPath.WithFile(o.ToName),
				HasPredecessor:  c.HasPredecessor,
				From:            c.From,
				To:              c.To,
				FileLines:       c.FileLines,
				ASTPath:         c.ASTPath.WithFile(o.ToName),
			}, nil
		}
		return c, nil
	case *VariableRenamed, *SubASTInserted, *TextualChange:
		if !touchesFile(other, file) {
			return c, nil
		}
		return c.redetectInOverlay(ctx, other)
	default:
		return c, nil
	}
}

// redetectInOverlay builds a single-file Repo-State carrying this change's
// FileLines (the whole file, per the detector's contract), applies other,
// then re-locates ASTPath in the resulting AST to recompute the inserted
// subtree's byte span, per the spec's overlay re-detect discipline. From/To
// must keep addressing only the inserted subtree, not the whole post-other
// file, so a later Apply splices just that subtree at the parent offset.
func (c *SubASTInserted) redetectInOverlay(ctx context.Context, other Change) (Change, error) {
	file := c.ParentPath.File()
	parser := parsing.NewParser(nil)
	overlay := reposstate.NewSingleFileState(parser, file, joinLines(c.FileLines))
	if err := other.Apply(ctx, overlay); err != nil {
		return nil, err
	}
	content, err := overlay.Get(file)
	if err != nil {
		return nil, err
	}
	tu, err := parser.Parse(ctx, file, content)
	if err != nil {
		return nil, err
	}
	defer tu.Close()
	node, err := c.ASTPath.Locate(tu)
	if err != nil {
		return nil, err
	}
	extent := node.Extent()

	// PredecessorPath addresses a sibling by its own displayname when it has
	// one, so a rename landing on that sibling invalidates the old path the
	// same way it would invalidate ASTPath. Recompute it structurally from
	// the overlay instead of carrying the stale path forward.
	predecessorPath := c.PredecessorPath
	hasPredecessor := c.HasPredecessor
	if parent := node.Parent(); !parent.IsNull() {
		siblings := parent.Children()
		index := -1
		for i, sib := range siblings {
			if sib.Equal(node) {
				index = i
				break
			}
		}
		if index > 0 {
			predecessorPath = c.ParentPath.Appended(parent, siblings[index-1])
			hasPredecessor = true
		} else if index == 0 {
			hasPredecessor = false
		}
	}

	return &SubASTInserted{
		ParentPath:      c.ParentPath,
		PredecessorPath: predecessorPath,
		HasPredecessor:  hasPredecessor,
		From:            extent.Start.Offset,
		To:              extent.End.Offset,
		FileLines:       splitLines(content),
		ASTPath:         c.ASTPath,
	}, nil
}

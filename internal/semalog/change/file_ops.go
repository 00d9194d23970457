package change

import (
	"bytes"
	"context"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// FileAdded introduces a new file with the given content.
type FileAdded struct {
	FileName string   `json:"file_name"`
	Content  []string `json:"content"`
}

func (c *FileAdded) Name() string { return NameFileAdded }

func (c *FileAdded) Apply(ctx context.Context, state reposstate.State) error {
	return state.Set(c.FileName, joinLines(c.Content))
}

func (c *FileAdded) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	switch o := other.(type) {
	case *FileAdded:
		if o.FileName != c.FileName {
			return c, nil
		}
		if bytes.Equal(joinLines(o.Content), joinLines(c.Content)) {
			return nil, nil
		}
		return nil, core.NewConflict(c, other)
	case *FileDeleted:
		return c, nil
	case *FileRenamed, *VariableRenamed, *SubASTInserted, *TextualChange:
		// The transformation table marks FileAdded against each of these
		// kinds as an unconditional Conflict, independent of path, mirroring
		// the Python original's raise Conflict here.
		return nil, core.NewConflict(c, other)
	default:
		return c, nil
	}
}

// FileDeleted removes an existing file. Content is retained for conflict
// checks against a rebased delete-of-rename (see §9 S6).
type FileDeleted struct {
	FileName string   `json:"file_name"`
	Content  []string `json:"content"`
}

func (c *FileDeleted) Name() string { return NameFileDeleted }

func (c *FileDeleted) Apply(ctx context.Context, state reposstate.State) error {
	return state.Delete(c.FileName)
}

func (c *FileDeleted) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	switch o := other.(type) {
	case *FileAdded:
		if o.FileName == c.FileName {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *FileDeleted:
		if o.FileName == c.FileName {
			return nil, nil
		}
		return c, nil
	case *FileRenamed:
		if o.FromName == c.FileName {
			current, err := state.Get(o.ToName)
			if err != nil {
				return nil, core.NewConflict(c, other)
			}
			if bytes.Equal(current, joinLines(c.Content)) {
				return &FileDeleted{FileName: o.ToName, Content: c.Content}, nil
			}
			return nil, core.NewConflict(c, other)
		}
		if o.ToName == c.FileName {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	default:
		if touchesFile(other, c.FileName) {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	}
}

// FileRenamed moves a file, preserving its bytes.
type FileRenamed struct {
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
}

func (c *FileRenamed) Name() string { return NameFileRenamed }

func (c *FileRenamed) Apply(ctx context.Context, state reposstate.State) error {
	return state.Rename(c.FromName, c.ToName)
}

func (c *FileRenamed) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	switch o := other.(type) {
	case *FileAdded:
		if o.FileName == c.ToName {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *FileDeleted:
		if o.FileName == c.FromName {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	case *FileRenamed:
		if o.FromName == c.FromName || o.FromName == c.ToName ||
			o.ToName == c.FromName || o.ToName == c.ToName {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	default:
		if touchesFile(other, c.FromName) || touchesFile(other, c.ToName) {
			return nil, core.NewConflict(c, other)
		}
		return c, nil
	}
}

// touchesFile reports whether other reads or writes fileName, used by the
// file-operation variants' catch-all Transform branches against
// VariableRenamed/SubASTInserted/TextualChange, all of which the
// transformation table marks × (Conflict) when they share a file and leaves
// identity (=) when they don't.
func touchesFile(other Change, fileName string) bool {
	switch o := other.(type) {
	case *VariableRenamed:
		return o.Path.File() == fileName
	case *SubASTInserted:
		return o.ParentPath.File() == fileName
	case *TextualChange:
		return o.FilePath == fileName
	}
	return false
}

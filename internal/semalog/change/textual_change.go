package change

import (
	"context"
	"fmt"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// TextualChange replaces the half-open line range [FromLine, ToLine) with
// Content. FromLine == ToLine is an insertion; empty Content is a deletion.
type TextualChange struct {
	FilePath string   `json:"file_path"`
	FromLine int      `json:"from_line"`
	ToLine   int      `json:"to_line"`
	Content  []string `json:"content"`
}

func (c *TextualChange) Name() string { return NameTextualChange }

func (c *TextualChange) Apply(ctx context.Context, state reposstate.State) error {
	content, err := state.Get(c.FilePath)
	if err != nil {
		return err
	}
	lines := splitLines(content)
	if c.FromLine < 0 || c.ToLine > len(lines) || c.FromLine > c.ToLine {
		return core.NewStoreError("apply text change", errRange(c.FilePath, c.FromLine, c.ToLine, len(lines)))
	}
	out := make([]string, 0, len(lines)-(c.ToLine-c.FromLine)+len(c.Content))
	out = append(out, lines[:c.FromLine]...)
	out = append(out, c.Content...)
	out = append(out, lines[c.ToLine:]...)
	return state.Set(c.FilePath, joinLines(out))
}

func (c *TextualChange) Transform(ctx context.Context, state reposstate.State, other Change) (Change, error) {
	o, ok := other.(*TextualChange)
	if !ok {
		// The transformation table marks TextualChange against every
		// non-textual change kind as an unconditional Conflict, independent
		// of path, mirroring the Python original's raise Conflict here.
		return nil, core.NewConflict(c, other)
	}
	if o.FilePath != c.FilePath {
		return c, nil
	}
	if c.FromLine >= o.ToLine {
		delta := len(o.Content) - (o.ToLine - o.FromLine)
		return &TextualChange{
			FilePath: c.FilePath,
			FromLine: c.FromLine + delta,
			ToLine:   c.ToLine + delta,
			Content:  c.Content,
		}, nil
	}
	if c.ToLine <= o.FromLine {
		return c, nil
	}
	return nil, core.NewConflict(c, other)
}

func errRange(file string, from, to, n int) error {
	return fmt.Errorf("line range [%d,%d) out of bounds for %s with %d lines", from, to, file, n)
}

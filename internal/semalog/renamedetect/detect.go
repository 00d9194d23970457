// Package renamedetect implements the refined variable-rename detector
// (component D): it finds VariableRenamed edits between two versions of one
// file by comparing the set of VAR_DECL AST-Paths present in each.
package renamedetect

import (
	"context"

	"github.com/smartgit-oss/semalog/internal/semalog/astpath"
	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/parsing"
)

type declSite struct {
	path    astpath.Path
	cursor  parsing.Cursor
	name    string
	typ     string
	samePrefix string
}

// Detect compares oldTU and newTU (both parses of fileName, before and after
// a commit) and returns the VariableRenamed edits between them: for each
// VAR_DECL path present only in oldTU, find candidates present only in
// newTU sharing the same parent path prefix, whose spelling differs and
// whose type spelling matches; accept only when exactly one candidate
// survives.
func Detect(ctx context.Context, fileName string, oldTU, newTU *parsing.TranslationUnit) []*change.VariableRenamed {
	oldDecls := collectVarDecls(fileName, oldTU)
	newDecls := collectVarDecls(fileName, newTU)

	oldOnly, newOnly := symmetricDifference(oldDecls, newDecls)

	var out []*change.VariableRenamed
	for _, removed := range oldOnly {
		var candidates []declSite
		for _, added := range newOnly {
			if added.samePrefix != removed.samePrefix {
				continue
			}
			if added.name == removed.name {
				continue
			}
			if added.typ != removed.typ {
				continue
			}
			candidates = append(candidates, added)
		}
		if len(candidates) == 1 {
			out = append(out, &change.VariableRenamed{
				Path:    removed.path,
				NewName: candidates[0].name,
			})
		}
	}
	return out
}

// collectVarDecls walks tu and returns one declSite per VAR_DECL cursor,
// keyed by its AST-Path.
func collectVarDecls(fileName string, tu *parsing.TranslationUnit) []declSite {
	var out []declSite
	var walk func(path astpath.Path, cur parsing.Cursor)
	walk = func(path astpath.Path, cur parsing.Cursor) {
		for _, child := range cur.Children() {
			childPath := path.Appended(cur, child)
			if child.Kind() == parsing.KindVarDecl {
				out = append(out, declSite{
					path:       childPath,
					cursor:     child,
					name:       child.Displayname(),
					typ:        child.TypeSpelling(),
					samePrefix: childPath.DropLast(1).Hash(),
				})
			}
			walk(childPath, child)
		}
	}
	walk(astpath.New(fileName), tu.Root())
	return out
}

func symmetricDifference(oldDecls, newDecls []declSite) (oldOnly, newOnly []declSite) {
	newByHash := map[string]bool{}
	for _, d := range newDecls {
		newByHash[d.path.Hash()] = true
	}
	oldByHash := map[string]bool{}
	for _, d := range oldDecls {
		oldByHash[d.path.Hash()] = true
	}
	for _, d := range oldDecls {
		if !newByHash[d.path.Hash()] {
			oldOnly = append(oldOnly, d)
		}
	}
	for _, d := range newDecls {
		if !oldByHash[d.path.Hash()] {
			newOnly = append(newOnly, d)
		}
	}
	return oldOnly, newOnly
}

package parsing

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/src-d/enry/v2"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// TranslationUnit is a parsed source file: a root Cursor plus the bytes and
// file name it was parsed from, mirroring clang.cindex.TranslationUnit
// closely enough to support AST-Path resolution and the token/definition
// operations Cursor exposes.
type TranslationUnit struct {
	fileName string
	source   []byte
	root     *sitter.Node
}

// FileName returns the path this translation unit was parsed from.
func (tu *TranslationUnit) FileName() string { return tu.fileName }

// Root returns the TRANSLATION_UNIT cursor.
func (tu *TranslationUnit) Root() Cursor {
	return Cursor{tu: tu, node: tu.root}
}

// Source returns the verbatim bytes this translation unit was parsed from.
func (tu *TranslationUnit) Source() []byte { return tu.source }

// Close is a no-op: sitter.Parse's synchronous tree has no handle to
// release. Kept so callers can treat a TranslationUnit as a scoped
// resource uniformly with the Parser's other staged resources.
func (tu *TranslationUnit) Close() {}

// Parser is the Parser Adapter: it turns raw C/C++ source bytes into a
// TranslationUnit, selecting the C or C++ grammar per file extension,
// disambiguating the ambiguous .h extension with enry's content classifier
// the same way a build system would pick a compiler front end.
type Parser struct {
	logger core.Logger
}

// NewParser builds a Parser. A nil logger is replaced with core.NewLogger().
func NewParser(logger core.Logger) *Parser {
	if logger == nil {
		logger = core.NewLogger()
	}
	return &Parser{logger: logger}
}

// Parse parses source as C or C++, selected from fileName's extension, with
// ambiguous .h headers classified from content.
func (p *Parser) Parse(ctx context.Context, fileName string, source []byte) (*TranslationUnit, error) {
	_, release, err := stage(fileName, source)
	if err != nil {
		return nil, err
	}
	defer release()

	lang := languageFor(fileName, source)
	root := sitter.Parse(source, lang)
	if root == nil || root.IsNull() {
		return nil, errors.Errorf("parsing: tree-sitter returned no tree for %s", fileName)
	}
	return &TranslationUnit{fileName: fileName, source: source, root: root}, nil
}

// languageFor picks the tree-sitter grammar for fileName, following the same
// source-classification approach the original smart-git prototype used
// libmagic/pygments for on ambiguous extensions.
func languageFor(fileName string, source []byte) *sitter.Language {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".c":
		return c.GetLanguage()
	case ".cc", ".cpp", ".cxx", ".hpp", ".hh", ".hxx", ".h++", ".c++":
		return cpp.GetLanguage()
	case ".h":
		if classifyHeaderAsCPP(fileName, source) {
			return cpp.GetLanguage()
		}
		return c.GetLanguage()
	default:
		return cpp.GetLanguage()
	}
}

func classifyHeaderAsCPP(fileName string, source []byte) bool {
	lang := enry.GetLanguage(filepath.Base(fileName), source)
	if lang == "C++" {
		return true
	}
	if lang == "C" {
		return false
	}
	return looksLikeCPP(source)
}

// looksLikeCPP is the fallback when enry declines to classify a header
// (empty or too short a sample): scan for constructs C has no syntax for.
func looksLikeCPP(source []byte) bool {
	text := string(source)
	for _, marker := range []string{"class ", "namespace ", "template<", "template <", "::", "public:", "private:", "protected:"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

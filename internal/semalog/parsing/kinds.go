package parsing

// Libclang-flavored cursor kinds, matching the vocabulary clang.cindex.CursorKind
// exposes for the node kinds this engine reasons about. semalog never links
// against libclang; tree-sitter node types are translated onto this
// vocabulary so detectors and the change algebra can be written against
// kind names that read the same as the original smart-git prototype.
const (
	KindTranslationUnit = "TRANSLATION_UNIT"
	KindVarDecl         = "VAR_DECL"
	KindParmDecl        = "PARM_DECL"
	KindFunctionDecl    = "FUNCTION_DECL"
	KindDeclStmt        = "DECL_STMT"
	KindDeclRefExpr     = "DECL_REF_EXPR"
	KindCompoundStmt    = "COMPOUND_STMT"
	KindCallExpr        = "CALL_EXPR"
	KindIfStmt          = "IF_STMT"
	KindForStmt         = "FOR_STMT"
	KindWhileStmt       = "WHILE_STMT"
	KindReturnStmt      = "RETURN_STMT"
	KindBinaryOperator  = "BINARY_OPERATOR"
	KindUnaryOperator   = "UNARY_OPERATOR"
	KindIntegerLiteral  = "INTEGER_LITERAL"
	KindStringLiteral   = "STRING_LITERAL"
	KindStructDecl      = "STRUCT_DECL"
	KindFieldDecl       = "FIELD_DECL"
	KindTypedefDecl     = "TYPEDEF_DECL"
	KindUnexposedExpr   = "UNEXPOSED_EXPR"
	KindUnexposedDecl   = "UNEXPOSED_DECL"
)

// treeSitterKindTable maps the C/C++ tree-sitter grammar's node types onto
// the libclang cursor kind vocabulary above. Node types not present here
// fall back to KindUnexposedExpr for expression-shaped nodes or
// KindUnexposedDecl otherwise, mirroring libclang's own UNEXPOSED_* escape
// hatch for constructs it does not give a dedicated kind.
var treeSitterKindTable = map[string]string{
	"translation_unit":       KindTranslationUnit,
	"declaration":            KindVarDecl,
	"init_declarator":        KindVarDecl,
	"parameter_declaration":  KindParmDecl,
	"function_definition":    KindFunctionDecl,
	"function_declarator":    KindFunctionDecl,
	"declaration_list":       KindDeclStmt,
	"identifier":             KindDeclRefExpr,
	"field_identifier":       KindDeclRefExpr,
	"compound_statement":     KindCompoundStmt,
	"call_expression":        KindCallExpr,
	"if_statement":           KindIfStmt,
	"for_statement":          KindForStmt,
	"while_statement":        KindWhileStmt,
	"return_statement":       KindReturnStmt,
	"binary_expression":      KindBinaryOperator,
	"unary_expression":       KindUnaryOperator,
	"number_literal":         KindIntegerLiteral,
	"string_literal":         KindStringLiteral,
	"struct_specifier":       KindStructDecl,
	"field_declaration":      KindFieldDecl,
	"type_definition":        KindTypedefDecl,
}

func translateKind(nodeType string) string {
	if kind, ok := treeSitterKindTable[nodeType]; ok {
		return kind
	}
	if isExpressionNodeType(nodeType) {
		return KindUnexposedExpr
	}
	return KindUnexposedDecl
}

func isExpressionNodeType(nodeType string) bool {
	switch nodeType {
	case "assignment_expression", "conditional_expression", "cast_expression",
		"sizeof_expression", "subscript_expression", "field_expression",
		"pointer_expression", "comma_expression", "parenthesized_expression":
		return true
	}
	return false
}

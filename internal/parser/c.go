package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var cKinds = kindTable{
	"function_definition": {kind: types.KindFunction, subkind: types.SubFunctionRegular},
	"struct_specifier":     {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"enum_specifier":       {kind: types.KindClass, subkind: types.SubClassEnum, nameField: "name"},
	"union_specifier":      {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"declaration":          {kind: types.KindVariable},
	"preproc_include":      {kind: types.KindImport},
	"preproc_def":          {kind: types.KindMacro, nameField: "name"},
	"preproc_function_def": {kind: types.KindMacro, nameField: "name"},
	"if_statement":         {kind: types.KindStatement, subkind: types.SubStatementIf},
	"else_clause":          {kind: types.KindStatement, subkind: types.SubStatementElse},
	"for_statement":        {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_statement":      {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"do_statement":         {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"case_statement":       {kind: types.KindStatement, subkind: types.SubStatementSwitchCase},
	"goto_statement":       {kind: types.KindStatement, subkind: types.SubStatementGoto},
	"return_statement":     {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"conditional_expression": {kind: types.KindExpression, subkind: types.SubExpressionTernary},
	"binary_expression":    {kind: types.KindExpression, subkind: types.SubExpressionBinary},
	"call_expression":      {kind: types.KindExpression, subkind: types.SubExpressionCall},
}

// cFrontend implements Frontend for plain C sources. The teacher
// shares one tree-sitter-cpp parser across .c/.h/.cpp; codelens splits
// them so C gets its own grammar (tree-sitter/tree-sitter-c), matching
// spec.md's per-language frontend boundary.
type cFrontend struct {
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

func NewCFrontend() Frontend {
	lang := tree_sitter.NewLanguage(tree_sitter_c.Language())
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(lang)
	return &cFrontend{parser: p, lang: lang}
}

func (f *cFrontend) Language() types.Language { return types.LangC }

func (f *cFrontend) CanParse(path string) bool { return hasAnySuffix(path, ".c", ".h") }

func (f *cFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: false}
}

func (f *cFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("c.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, types.LangC, cKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

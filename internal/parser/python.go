package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var pythonKinds = kindTable{
	"function_definition":  {kind: types.KindFunction, subkind: types.SubFunctionRegular, nameField: "name"},
	"class_definition":     {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"import_statement":     {kind: types.KindImport},
	"import_from_statement": {kind: types.KindImport},
	"assignment":           {kind: types.KindVariable},
	"if_statement":          {kind: types.KindStatement, subkind: types.SubStatementIf},
	"elif_clause":           {kind: types.KindStatement, subkind: types.SubStatementIf},
	"else_clause":           {kind: types.KindStatement, subkind: types.SubStatementElse},
	"for_statement":         {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_statement":       {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"try_statement":         {kind: types.KindStatement, subkind: types.SubStatementTry},
	"except_clause":         {kind: types.KindStatement, subkind: types.SubStatementCatch},
	"return_statement":      {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"conditional_expression": {kind: types.KindExpression, subkind: types.SubExpressionTernary},
	"boolean_operator":      {kind: types.KindExpression, subkind: types.SubExpressionLogical},
	"call":                  {kind: types.KindExpression, subkind: types.SubExpressionCall},
	"lambda":                {kind: types.KindFunction, subkind: types.SubFunctionClosure},
}

// pythonFrontend implements Frontend for .py/.pyi, grounded on the
// teacher's setupPython.
type pythonFrontend struct {
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

func NewPythonFrontend() Frontend {
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(lang)
	return &pythonFrontend{parser: p, lang: lang}
}

func (f *pythonFrontend) Language() types.Language { return types.LangPython }

func (f *pythonFrontend) CanParse(path string) bool { return hasAnySuffix(path, ".py", ".pyi") }

func (f *pythonFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: false}
}

func (f *pythonFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("python.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, types.LangPython, pythonKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

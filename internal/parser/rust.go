package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var rustKinds = kindTable{
	"function_item":       {kind: types.KindFunction, subkind: types.SubFunctionRegular, nameField: "name"},
	"closure_expression":  {kind: types.KindFunction, subkind: types.SubFunctionClosure},
	"struct_item":         {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"enum_item":           {kind: types.KindClass, subkind: types.SubClassEnum, nameField: "name"},
	"trait_item":          {kind: types.KindClass, subkind: types.SubClassTrait, nameField: "name"},
	"impl_item":           {kind: types.KindClass, subkind: types.SubClassRegular},
	"let_declaration":     {kind: types.KindVariable},
	"const_item":          {kind: types.KindVariable, nameField: "name"},
	"static_item":         {kind: types.KindVariable, nameField: "name"},
	"use_declaration":     {kind: types.KindImport},
	"mod_item":            {kind: types.KindModule, nameField: "name"},
	"if_expression":       {kind: types.KindStatement, subkind: types.SubStatementIf},
	"else_clause":         {kind: types.KindStatement, subkind: types.SubStatementElse},
	"for_expression":      {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_expression":    {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"loop_expression":     {kind: types.KindStatement, subkind: types.SubStatementFor},
	"match_arm":           {kind: types.KindStatement, subkind: types.SubStatementSwitchCase},
	"return_expression":   {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"call_expression":     {kind: types.KindExpression, subkind: types.SubExpressionCall},
	"binary_expression":   {kind: types.KindExpression, subkind: types.SubExpressionBinary},
	"macro_invocation":    {kind: types.KindMacro, nameField: "macro"},
}

// rustFrontend implements Frontend for .rs sources, grounded on the
// teacher's setupRust (tree-sitter-rust binding + the same query
// capture shape, here expressed as a kindTable instead of a query).
type rustFrontend struct {
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

func NewRustFrontend() Frontend {
	lang := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(lang)
	return &rustFrontend{parser: p, lang: lang}
}

func (f *rustFrontend) Language() types.Language { return types.LangRust }

func (f *rustFrontend) CanParse(path string) bool { return hasAnySuffix(path, ".rs") }

func (f *rustFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: false}
}

func (f *rustFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("rust.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, types.LangRust, rustKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

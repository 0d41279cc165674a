package parser

import (
	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var kotlinKinds = kindTable{
	"function_declaration":  {kind: types.KindFunction, subkind: types.SubFunctionRegular, nameField: "name"},
	"anonymous_function":    {kind: types.KindFunction, subkind: types.SubFunctionClosure},
	"lambda_literal":        {kind: types.KindFunction, subkind: types.SubFunctionClosure},
	"class_declaration":     {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"object_declaration":    {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"property_declaration":  {kind: types.KindVariable},
	"import_header":         {kind: types.KindImport},
	"if_expression":         {kind: types.KindStatement, subkind: types.SubStatementIf},
	"for_statement":         {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_statement":       {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"do_while_statement":    {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"when_entry":            {kind: types.KindStatement, subkind: types.SubStatementSwitchCase},
	"catch_block":           {kind: types.KindStatement, subkind: types.SubStatementCatch},
	"jump_expression":       {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"elvis_expression":      {kind: types.KindExpression, subkind: types.SubExpressionTernary},
	"conjunction_expression": {kind: types.KindExpression, subkind: types.SubExpressionLogical},
	"disjunction_expression": {kind: types.KindExpression, subkind: types.SubExpressionLogical},
	"call_expression":        {kind: types.KindExpression, subkind: types.SubExpressionCall},
}

// kotlinFrontend implements Frontend for .kt/.kts. Kotlin isn't in the
// teacher's own language set; this frontend follows the same
// parser/query-table shape the teacher uses for every other language,
// wired to tree-sitter-grammars/tree-sitter-kotlin (named, not
// grounded, per SPEC_FULL.md §3).
type kotlinFrontend struct {
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

func NewKotlinFrontend() Frontend {
	lang := tree_sitter.NewLanguage(tree_sitter_kotlin.Language())
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(lang)
	return &kotlinFrontend{parser: p, lang: lang}
}

func (f *kotlinFrontend) Language() types.Language { return types.LangKotlin }

func (f *kotlinFrontend) CanParse(path string) bool { return hasAnySuffix(path, ".kt", ".kts") }

func (f *kotlinFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: false}
}

func (f *kotlinFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("kotlin.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, types.LangKotlin, kotlinKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

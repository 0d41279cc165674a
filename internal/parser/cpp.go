package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var cppKinds = kindTable{
	"function_definition":    {kind: types.KindFunction, subkind: types.SubFunctionRegular},
	"class_specifier":        {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"struct_specifier":       {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"enum_specifier":         {kind: types.KindClass, subkind: types.SubClassEnum, nameField: "name"},
	"namespace_definition":   {kind: types.KindModule, nameField: "name"},
	"template_declaration":   {kind: types.KindClass, subkind: types.SubClassRegular, flags: types.FlagGeneric},
	"declaration":            {kind: types.KindVariable},
	"preproc_include":        {kind: types.KindImport},
	"using_declaration":      {kind: types.KindImport},
	"lambda_expression":      {kind: types.KindFunction, subkind: types.SubFunctionClosure},
	"if_statement":           {kind: types.KindStatement, subkind: types.SubStatementIf},
	"else_clause":            {kind: types.KindStatement, subkind: types.SubStatementElse},
	"for_statement":          {kind: types.KindStatement, subkind: types.SubStatementFor},
	"for_range_loop":         {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_statement":        {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"do_statement":           {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"case_statement":         {kind: types.KindStatement, subkind: types.SubStatementSwitchCase},
	"catch_clause":           {kind: types.KindStatement, subkind: types.SubStatementCatch},
	"goto_statement":         {kind: types.KindStatement, subkind: types.SubStatementGoto},
	"return_statement":       {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"conditional_expression": {kind: types.KindExpression, subkind: types.SubExpressionTernary},
	"binary_expression":      {kind: types.KindExpression, subkind: types.SubExpressionBinary},
	"call_expression":        {kind: types.KindExpression, subkind: types.SubExpressionCall},
}

// cppFrontend implements Frontend for C++ sources, grounded on the
// teacher's setupCpp (tree-sitter-cpp binding, same query capture
// shape here expressed as a kindTable).
type cppFrontend struct {
	parser *tree_sitter.Parser
	lang   *tree_sitter.Language
}

func NewCppFrontend() Frontend {
	lang := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(lang)
	return &cppFrontend{parser: p, lang: lang}
}

func (f *cppFrontend) Language() types.Language { return types.LangCpp }

func (f *cppFrontend) CanParse(path string) bool {
	return hasAnySuffix(path, ".cc", ".cpp", ".cxx", ".hpp", ".hh")
}

func (f *cppFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: false}
}

func (f *cppFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("cpp.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, types.LangCpp, cppKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

var jsLikeKinds = kindTable{
	"function_declaration":    {kind: types.KindFunction, subkind: types.SubFunctionRegular, nameField: "name"},
	"generator_function_declaration": {kind: types.KindFunction, subkind: types.SubFunctionGenerator, nameField: "name", flags: types.FlagGeneric},
	"function_expression":     {kind: types.KindFunction, subkind: types.SubFunctionRegular, nameField: "name"},
	"arrow_function":          {kind: types.KindFunction, subkind: types.SubFunctionClosure},
	"method_definition":       {kind: types.KindFunction, subkind: types.SubFunctionMethod, nameField: "name"},
	"class_declaration":       {kind: types.KindClass, subkind: types.SubClassRegular, nameField: "name"},
	"interface_declaration":   {kind: types.KindClass, subkind: types.SubClassInterface, nameField: "name"},
	"type_alias_declaration":  {kind: types.KindType, nameField: "name"},
	"enum_declaration":        {kind: types.KindClass, subkind: types.SubClassEnum, nameField: "name"},
	"variable_declarator":     {kind: types.KindVariable, nameField: "name"},
	"import_statement":        {kind: types.KindImport},
	"export_statement":        {kind: types.KindImport},
	"if_statement":            {kind: types.KindStatement, subkind: types.SubStatementIf},
	"else_clause":             {kind: types.KindStatement, subkind: types.SubStatementElse},
	"for_statement":           {kind: types.KindStatement, subkind: types.SubStatementFor},
	"for_in_statement":        {kind: types.KindStatement, subkind: types.SubStatementFor},
	"while_statement":         {kind: types.KindStatement, subkind: types.SubStatementWhile},
	"switch_case":             {kind: types.KindStatement, subkind: types.SubStatementSwitchCase},
	"try_statement":           {kind: types.KindStatement, subkind: types.SubStatementTry},
	"catch_clause":            {kind: types.KindStatement, subkind: types.SubStatementCatch},
	"return_statement":        {kind: types.KindStatement, subkind: types.SubStatementReturn},
	"ternary_expression":      {kind: types.KindExpression, subkind: types.SubExpressionTernary},
	"binary_expression":       {kind: types.KindExpression, subkind: types.SubExpressionBinary},
	"call_expression":         {kind: types.KindExpression, subkind: types.SubExpressionCall},
}

// typeScriptFrontend serves both .ts/.tsx and, when typescript is false,
// plain .js/.jsx/.mjs/.cjs - grounded on the teacher's setupTypeScript
// and setupJavaScript, which share almost the same query shape.
type typeScriptFrontend struct {
	parser     *tree_sitter.Parser
	lang       *tree_sitter.Language
	language   types.Language
	isTypeScript bool
}

func NewTypeScriptFrontend(typescript bool) Frontend {
	var langPtr = tree_sitter_javascript.Language()
	lang := types.LangJavaScript
	if typescript {
		langPtr = tree_sitter_typescript.LanguageTypescript()
		lang = types.LangTypeScript
	}
	tsLang := tree_sitter.NewLanguage(langPtr)
	p := tree_sitter.NewParser()
	_ = p.SetLanguage(tsLang)
	return &typeScriptFrontend{parser: p, lang: tsLang, language: lang, isTypeScript: typescript}
}

func (f *typeScriptFrontend) Language() types.Language { return f.language }

func (f *typeScriptFrontend) CanParse(path string) bool {
	if f.isTypeScript {
		return hasAnySuffix(path, ".ts", ".tsx")
	}
	return hasAnySuffix(path, ".js", ".jsx", ".mjs", ".cjs")
}

func (f *typeScriptFrontend) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, SupportsTypes: f.isTypeScript}
}

func (f *typeScriptFrontend) Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error) {
	tree := f.parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.ParseError("typescript.Parse", path, 0, 0, errParseFailed)
	}
	defer tree.Close()
	root := lowerTree(dag, fileID, f.language, jsLikeKinds, tree.RootNode(), content)
	return &ParseResult{Root: root, Diagnostics: collectErrorDiagnostics(tree.RootNode(), content)}, nil
}

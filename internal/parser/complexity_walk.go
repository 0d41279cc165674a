package parser

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// computeFunctionComplexity walks a function's tree-sitter subtree and
// returns (cyclomatic, cognitive), per spec.md §4.4. It is grammar-kind
// driven across every supported language in one switch, the same way
// the teacher's calculateCyclomaticComplexity covers C#/Go/JS/Python
// kind names together rather than branching per language up front.
func computeFunctionComplexity(fn *tree_sitter.Node) (cyclomatic, cognitive uint32) {
	cyclomatic = 1
	walkCyclomatic(fn, &cyclomatic)
	walkCognitive(fn, &cognitive, 0, fn)
	return cyclomatic, cognitive
}

func walkCyclomatic(n *tree_sitter.Node, complexity *uint32) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "if_statement", "if_expression", "elif_clause":
		*complexity++
	case "for_statement", "for_range_statement", "for_in_statement", "for_expression":
		*complexity++
	case "while_statement", "while_expression", "do_statement":
		*complexity++
	case "case_clause", "case_statement", "match_arm", "when_entry", "switch_case":
		*complexity++
	case "conditional_expression", "ternary_expression":
		*complexity++
	case "catch_clause", "except_clause", "catch_block":
		*complexity++
	case "binary_expression", "boolean_operator", "infix_expression":
		if op := logicalOperator(n); op {
			*complexity++
		}
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		walkCyclomatic(n.NamedChild(uint(i)), complexity)
	}
}

// logicalOperator reports whether a binary node's operator child is
// one of the short-circuit logical operators (&&, ||, and, or).
func logicalOperator(n *tree_sitter.Node) bool {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		c := n.Child(i)
		if c == nil || c.IsNamed() {
			continue
		}
		switch c.Kind() {
		case "&&", "||", "and", "or":
			return true
		}
	}
	return false
}

// walkCognitive implements nesting-weighted cognitive complexity:
// every decision adds 1 plus the current nesting level; else/elif adds
// a flat 1 with no nesting surcharge; recursion, goto, and labeled
// break each add a flat 1.
func walkCognitive(n *tree_sitter.Node, cognitive *uint32, nesting int, fnRoot *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "if_statement", "if_expression", "for_statement", "for_range_statement",
		"for_in_statement", "while_statement", "do_statement", "case_clause",
		"case_statement", "match_arm", "catch_clause", "except_clause", "catch_block",
		"conditional_expression", "ternary_expression":
		*cognitive += uint32(1 + nesting)
		nesting++
	case "else_clause", "elif_clause":
		*cognitive++
	case "goto_statement":
		*cognitive++
	case "break_statement", "continue_statement":
		if hasLabel(n) {
			*cognitive++
		}
	case "call_expression", "call":
		if isSelfRecursiveCall(n, fnRoot) {
			*cognitive++
		}
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		walkCognitive(n.NamedChild(uint(i)), cognitive, nesting, fnRoot)
	}
}

func hasLabel(n *tree_sitter.Node) bool {
	return n.ChildByFieldName("label") != nil
}

// isSelfRecursiveCall reports whether a call expression invokes the
// enclosing function by name, a crude but language-agnostic recursion
// check: compare the call's callee identifier text against the
// function root's name field.
func isSelfRecursiveCall(call, fnRoot *tree_sitter.Node) bool {
	nameNode := fnRoot.ChildByFieldName("name")
	if nameNode == nil {
		return false
	}
	callee := call.ChildByFieldName("function")
	if callee == nil {
		callee = call.NamedChild(0)
	}
	if callee == nil {
		return false
	}
	return callee.StartByte() != nameNode.StartByte() &&
		callee.EndByte()-callee.StartByte() == nameNode.EndByte()-nameNode.StartByte() &&
		callee.Kind() == nameNode.Kind()
}

package parser

import (
	"errors"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var errParseFailed = errors.New("tree-sitter returned no tree")

// hasAnySuffix reports whether path ends in any of exts, case-insensitively.
func hasAnySuffix(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// collectErrorDiagnostics walks the parsed tree for ERROR nodes tree-sitter
// inserts on recoverable syntax errors, turning each into a Diagnostic
// instead of aborting the parse (spec.md §4.1: partial tree + Error node).
func collectErrorDiagnostics(root *tree_sitter.Node, content []byte) []Diagnostic {
	var diags []Diagnostic
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.IsError() || n.IsMissing() {
			line, col := lineCol(content, n.StartByte())
			diags = append(diags, Diagnostic{Line: line, Column: col, Message: "syntax error near " + n.Kind()})
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if c := n.NamedChild(uint(i)); c != nil {
				walk(c)
			}
		}
	}
	walk(root)
	return diags
}

func lineCol(content []byte, offset uint32) (line, col int) {
	line = 1
	lastNewline := -1
	for i := 0; i < int(offset) && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	col = int(offset) - lastNewline
	return line, col
}

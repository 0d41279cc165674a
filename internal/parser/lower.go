package parser

import (
	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

// mapping is one entry of a language's kind table: the tree-sitter
// node kind string maps to a unified (NodeKind, Subkind) pair. Unknown
// tree-sitter kinds fall through to Expression::Other so source text
// is never silently dropped (spec.md §4.1).
type mapping struct {
	kind    types.NodeKind
	subkind types.Subkind
	// nameField, when non-empty, is the tree-sitter field name holding
	// this node's identifier child, used to seed NameVector.
	nameField string
	// flags are ORed onto every node produced from this mapping, e.g.
	// C++ template declarations always set FlagGeneric.
	flags types.Flags
}

// kindTable is a language's tree-sitter-kind -> mapping lookup.
type kindTable map[string]mapping

// lowerTree walks a tree-sitter tree in source order and appends one
// UnifiedAstNode per named node into dag, wiring parent/child/sibling
// links so traversal matches source-text order (the AST determinism
// invariant). It returns the new root node id.
func lowerTree(dag *ast.Dag, fileID types.FileID, lang types.Language, table kindTable, root *tree_sitter.Node, content []byte) types.NodeID {
	rootID := lowerNode(dag, fileID, lang, table, root, content, ast.Sentinel)
	dag.SetFileRoot(uint32(fileID), rootID)
	return rootID
}

func lowerNode(dag *ast.Dag, fileID types.FileID, lang types.Language, table kindTable, n *tree_sitter.Node, content []byte, parent types.NodeID) types.NodeID {
	m, known := table[n.Kind()]
	if !known {
		m = mapping{kind: types.KindExpression, subkind: types.SubExpressionOther}
	}

	lo, hi := n.StartByte(), n.EndByte()
	text := content[lo:hi]

	node := ast.UnifiedAstNode{
		Kind:        m.kind,
		Subkind:     m.subkind,
		Language:    lang,
		Flags:       m.flags,
		Parent:      parent,
		FirstChild:  ast.Sentinel,
		NextSibling: ast.Sentinel,
		RangeLo:     lo,
		RangeHi:     hi,
		FileID:      uint32(fileID),
	}
	node.SemanticHash = xxhash.Sum64(normalizeTokens(text))
	node.StructuralHash = structuralHash(n, content)
	if m.nameField != "" {
		if nameNode := n.ChildByFieldName(m.nameField); nameNode != nil {
			nameText := content[nameNode.StartByte():nameNode.EndByte()]
			node.NameVector = xxhash.Sum64(nameText)
		}
	}
	if node.Kind == types.KindFunction {
		cyclomatic, cognitive := computeFunctionComplexity(n)
		node.Metadata = ast.PackComplexity(cyclomatic, cognitive)
	}

	id := dag.Append(node)

	childCount := int(n.NamedChildCount())
	for i := 0; i < childCount; i++ {
		child := n.NamedChild(uint(i))
		if child == nil {
			continue
		}
		childID := lowerNode(dag, fileID, lang, table, child, content, id)
		dag.AddChild(id, childID)
	}
	return id
}

// structuralHash hashes the shape of a subtree (named-node-kind
// sequence) ignoring identifiers and literals, for Type-2 clone
// classification.
func structuralHash(n *tree_sitter.Node, content []byte) uint64 {
	h := xxhash.New()
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		h.WriteString(n.Kind())
		h.Write([]byte{0})
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if c := n.NamedChild(uint(i)); c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	return h.Sum64()
}

// normalizeTokens strips whitespace runs so semantic_hash is stable
// under reformatting that doesn't change token content.
func normalizeTokens(text []byte) []byte {
	out := make([]byte, 0, len(text))
	lastSpace := false
	for _, b := range text {
		isSpace := b == ' ' || b == '\t' || b == '\n' || b == '\r'
		if isSpace {
			if !lastSpace && len(out) > 0 {
				out = append(out, ' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		out = append(out, b)
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return out
}

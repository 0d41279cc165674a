// Package ast implements the unified AST: a columnar, cache-friendly
// store of fixed-size UnifiedAstNode records shared by every language
// frontend after lowering.
package ast

import (
	"github.com/standardbeagle/codelens/internal/types"
)

// Sentinel is "no node" for parent/child/sibling links.
const Sentinel types.NodeID = types.SentinelNode

// UnifiedAstNode is a 64-byte fixed-size record. Field order packs the
// eight-byte hashes first so the struct needs no interior padding
// beyond the trailing reserved word; a unit test asserts the size.
//
// Go's ABI does not expose an alignas(32) equivalent for a plain
// struct. The columnar store (Dag) is a plain slice of these records,
// so consecutive nodes sit on a 64-byte stride, but the slice's base
// address carries only the natural 8-byte alignment of the largest
// field; cache-line alignment is not guaranteed.
type UnifiedAstNode struct {
	SemanticHash   uint64 // content hash of normalized token stream (Type-1 clones)
	StructuralHash uint64 // hash of shape ignoring identifiers (Type-2 clones)
	NameVector     uint64 // packed name embedding for similarity search
	Metadata       uint64 // per-kind extra: cyclomatic|cognitive|provenance

	Parent      types.NodeID
	FirstChild  types.NodeID
	NextSibling types.NodeID
	RangeLo     uint32
	RangeHi     uint32
	FileID      uint32

	Kind     types.NodeKind
	Subkind  types.Subkind
	Language types.Language
	Flags    types.Flags

	_ [4]byte // reserved, keeps the record at exactly 64 bytes
}

// Range returns the node's source byte range.
func (n *UnifiedAstNode) Range() types.SourceRange {
	return types.SourceRange{Lo: n.RangeLo, Hi: n.RangeHi}
}

// Metadata accessors. Cyclomatic/cognitive share the low/high 32 bits
// of Metadata for Function nodes; other kinds use Metadata for
// provenance (e.g. a packed source-text offset for Expression::Other).
func PackComplexity(cyclomatic, cognitive uint32) uint64 {
	return uint64(cyclomatic) | uint64(cognitive)<<32
}

func UnpackComplexity(meta uint64) (cyclomatic, cognitive uint32) {
	return uint32(meta & 0xFFFFFFFF), uint32(meta >> 32)
}

package ast

import (
	"testing"

	"github.com/standardbeagle/codelens/internal/types"
	"github.com/stretchr/testify/require"
)

func TestAddChildPreservesSiblingOrder(t *testing.T) {
	d := NewDag()
	root := d.Append(UnifiedAstNode{Kind: types.KindModule, Parent: Sentinel, FirstChild: Sentinel, NextSibling: Sentinel})
	a := d.Append(UnifiedAstNode{Kind: types.KindFunction, RangeLo: 10, RangeHi: 20, FirstChild: Sentinel, NextSibling: Sentinel})
	b := d.Append(UnifiedAstNode{Kind: types.KindFunction, RangeLo: 30, RangeHi: 40, FirstChild: Sentinel, NextSibling: Sentinel})
	c := d.Append(UnifiedAstNode{Kind: types.KindFunction, RangeLo: 50, RangeHi: 60, FirstChild: Sentinel, NextSibling: Sentinel})

	d.AddChild(root, a)
	d.AddChild(root, b)
	d.AddChild(root, c)

	children := d.Children(root)
	require.Equal(t, []types.NodeID{a, b, c}, children)

	var lastLo uint32
	for _, id := range children {
		n, ok := d.Node(id)
		require.True(t, ok)
		require.GreaterOrEqual(t, n.RangeLo, lastLo)
		lastLo = n.RangeLo
	}
}

func TestWalkVisitsPreOrder(t *testing.T) {
	d := NewDag()
	root := d.Append(UnifiedAstNode{Kind: types.KindModule, FirstChild: Sentinel, NextSibling: Sentinel})
	a := d.Append(UnifiedAstNode{Kind: types.KindFunction, FirstChild: Sentinel, NextSibling: Sentinel})
	b := d.Append(UnifiedAstNode{Kind: types.KindFunction, FirstChild: Sentinel, NextSibling: Sentinel})
	d.AddChild(root, a)
	d.AddChild(root, b)

	var order []types.NodeID
	d.Walk(root, func(id types.NodeID, n *UnifiedAstNode) bool {
		order = append(order, id)
		return true
	})
	require.Equal(t, []types.NodeID{root, a, b}, order)
}

func TestMutateBumpsGenerationAndMarksDirty(t *testing.T) {
	d := NewDag()
	id := d.Append(UnifiedAstNode{Kind: types.KindFunction, FirstChild: Sentinel, NextSibling: Sentinel})
	gen0 := d.Generation()

	ok := d.Mutate(id, func(n *UnifiedAstNode) {
		n.Metadata = PackComplexity(3, 4)
	})
	require.True(t, ok)
	require.Greater(t, d.Generation(), gen0)

	dirty := d.DirtyNodes()
	require.Contains(t, dirty, id)
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

func TestAnalyzeComplexityAggregatesAndRanksHotspots(t *testing.T) {
	dag := ast.NewDag()
	root := ast.UnifiedAstNode{Kind: types.KindModule, Parent: ast.Sentinel, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel}
	rootID := dag.Append(root)
	dag.SetFileRoot(1, rootID)

	low := ast.UnifiedAstNode{Kind: types.KindFunction, Parent: rootID, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel, Metadata: ast.PackComplexity(2, 1)}
	high := ast.UnifiedAstNode{Kind: types.KindFunction, Parent: rootID, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel, Metadata: ast.PackComplexity(9, 12)}
	lowID := dag.Append(low)
	highID := dag.Append(high)
	dag.AddChild(rootID, lowID)
	dag.AddChild(rootID, highID)

	report := AnalyzeComplexity(dag, map[types.FileID]types.NodeID{1: rootID}, 1)
	require.Len(t, report.Files, 1)
	require.Equal(t, uint32(11), report.Files[0].Sum)
	require.Equal(t, uint32(9), report.Files[0].Max)
	require.Len(t, report.Hotspots, 1)
	require.Equal(t, uint32(9), report.Hotspots[0].Cyclomatic)
}

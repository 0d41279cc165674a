package deepcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/analysis"
	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/discovery"
	"github.com/standardbeagle/codelens/internal/types"
)

func buildFixtureDag(t *testing.T) (*ast.Dag, map[types.FileID]types.NodeID) {
	t.Helper()
	dag := ast.NewDag()

	root := ast.UnifiedAstNode{Kind: types.KindModule, Parent: ast.Sentinel, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel}
	rootID := dag.Append(root)
	dag.SetFileRoot(1, rootID)

	hot := ast.UnifiedAstNode{Kind: types.KindFunction, Parent: rootID, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel, Metadata: ast.PackComplexity(18, 22), Flags: types.FlagExported}
	tame := ast.UnifiedAstNode{Kind: types.KindFunction, Parent: rootID, FirstChild: ast.Sentinel, NextSibling: ast.Sentinel, Metadata: ast.PackComplexity(2, 1), Flags: types.FlagExported}

	hotID := dag.Append(hot)
	tameID := dag.Append(tame)
	dag.AddChild(rootID, hotID)
	dag.AddChild(rootID, tameID)

	return dag, map[types.FileID]types.NodeID{1: rootID}
}

func TestRunDegradesGracefullyWithOnlyComplexityEnabled(t *testing.T) {
	dag, roots := buildFixtureDag(t)

	cfg := Config{IncludeComplexity: true, HotspotLimit: 10}
	report, err := Run(context.Background(), Inputs{Dag: dag, FileRoots: roots}, cfg)
	require.NoError(t, err)

	require.NotNil(t, report.Complexity)
	require.Nil(t, report.Churn)
	require.Contains(t, report.Scorecard.MissingSubscores, "churn")
	require.Contains(t, report.Scorecard.MissingSubscores, "tdg")
	require.NotNil(t, report.Scorecard.Complexity)
}

func TestRunFusesTDGHotspotsWhenComplexityAndDeadCodeAvailable(t *testing.T) {
	dag, roots := buildFixtureDag(t)
	rootID := roots[1]

	var hotID, tameID types.NodeID
	dag.Walk(rootID, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
		if n.Kind != types.KindFunction {
			return true
		}
		cyclomatic, _ := ast.UnpackComplexity(n.Metadata)
		if cyclomatic == 18 {
			hotID = id
		} else {
			tameID = id
		}
		return true
	})

	graph := analysis.NewReferenceGraph()
	graph.AddEdge(analysis.ReferenceEdge{From: tameID, To: hotID, Kind: types.RefCall})
	entries := analysis.EntryPointSet{tameID: true}

	cfg := DefaultConfig()
	cfg.IncludeChurn = false
	cfg.IncludeSATD = false
	cfg.IncludeDuplicates = false

	report, err := Run(context.Background(), Inputs{
		Dag:       dag,
		FileRoots: roots,
		RefGraph:  graph,
		EntryPoints: entries,
	}, cfg)
	require.NoError(t, err)

	require.Len(t, report.Hotspots, 2)
	require.GreaterOrEqual(t, report.Hotspots[0].Total, report.Hotspots[1].Total)
}

func TestBuildFileTreeAnnotatesEveryDiscoveredFile(t *testing.T) {
	dag, roots := buildFixtureDag(t)

	in := Inputs{
		Dag:       dag,
		FileRoots: roots,
		FilePaths: map[types.FileID]string{1: "pkg/hot.go"},
		Files:     []discovery.File{{Path: "/abs/pkg/hot.go", Rel: "pkg/hot.go", Size: 100}},
	}
	report, err := Run(context.Background(), in, Config{IncludeComplexity: true, HotspotLimit: 5})
	require.NoError(t, err)
	require.Len(t, report.FileTree, 1)
	require.Equal(t, "pkg/hot.go", report.FileTree[0].Path)
	require.Equal(t, uint32(18), report.FileTree[0].MaxCyclomatic)
}

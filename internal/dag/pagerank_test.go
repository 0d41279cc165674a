package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/types"
)

func TestPageRankConvergesToEqualRanksOnACycle(t *testing.T) {
	a, b, c := types.FileID(1), types.FileID(2), types.FileID(3)
	g := NewGraph([]types.FileID{a, b, c}, []Edge{
		{From: a, To: b, Kind: EdgeImport},
		{From: b, To: c, Kind: EdgeImport},
		{From: c, To: a, Kind: EdgeImport},
	}, nil)

	ranks := PageRank(g, DefaultPageRankConfig())
	require.InDelta(t, ranks[a], ranks[b], 1e-6)
	require.InDelta(t, ranks[b], ranks[c], 1e-6)
}

func TestPageRankStableAcrossRuns(t *testing.T) {
	a, b, c := types.FileID(1), types.FileID(2), types.FileID(3)
	edges := []Edge{{From: a, To: b, Kind: EdgeCall}, {From: b, To: c, Kind: EdgeCall}, {From: c, To: a, Kind: EdgeCall}, {From: a, To: c, Kind: EdgeCall}}
	g := NewGraph([]types.FileID{a, b, c}, edges, nil)

	r1 := PageRank(g, DefaultPageRankConfig())
	r2 := PageRank(g, DefaultPageRankConfig())
	for k := range r1 {
		require.InDelta(t, r1[k], r2[k], 1e-6)
	}
}

func TestTopKPrunesToRequestedSize(t *testing.T) {
	nodes := []types.FileID{1, 2, 3, 4}
	edges := []Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 4}, {From: 4, To: 1}}
	g := NewGraph(nodes, edges, nil)
	ranks := PageRank(g, DefaultPageRankConfig())

	pruned := TopK(g, ranks, 2)
	require.Len(t, pruned.Nodes, 2)
	for _, e := range pruned.Edges {
		require.Contains(t, pruned.Nodes, e.From)
		require.Contains(t, pruned.Nodes, e.To)
	}
}

// Package dag builds the module/file dependency graph and runs
// PageRank over it, per spec.md §4.8.
package dag

import (
	"sort"

	"github.com/standardbeagle/codelens/internal/types"
)

// EdgeKind classifies a dependency edge between two files/modules.
type EdgeKind uint8

const (
	EdgeImport EdgeKind = iota
	EdgeCall
	EdgeInheritance
	EdgeImplementation
	EdgeTypeUsage
)

// Edge is a directed dependency between two files.
type Edge struct {
	From types.FileID
	To   types.FileID
	Kind EdgeKind
}

// Graph is the module/file dependency graph of spec.md §4.8.
type Graph struct {
	Nodes []types.FileID
	Edges []Edge
	adj   map[types.FileID][]int
}

// NewGraph builds a Graph from a node list and a set of edges,
// filtering edges by the allowed kinds (empty allow-list means keep
// everything), matching "edge filtering is configurable".
func NewGraph(nodes []types.FileID, edges []Edge, allow map[EdgeKind]bool) *Graph {
	g := &Graph{adj: make(map[types.FileID][]int)}
	g.Nodes = append(g.Nodes, nodes...)
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i] < g.Nodes[j] })

	for _, e := range edges {
		if len(allow) > 0 && !allow[e.Kind] {
			continue
		}
		g.adj[e.From] = append(g.adj[e.From], len(g.Edges))
		g.Edges = append(g.Edges, e)
	}
	return g
}

// Prune keeps only the given nodes and edges whose endpoints both
// survive, for the top-K-by-rank bounding spec.md §4.8 describes.
func (g *Graph) Prune(keep map[types.FileID]bool) *Graph {
	var nodes []types.FileID
	for _, n := range g.Nodes {
		if keep[n] {
			nodes = append(nodes, n)
		}
	}
	var edges []Edge
	for _, e := range g.Edges {
		if keep[e.From] && keep[e.To] {
			edges = append(edges, e)
		}
	}
	return NewGraph(nodes, edges, nil)
}

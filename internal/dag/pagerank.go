package dag

import (
	"sort"

	"github.com/standardbeagle/codelens/internal/types"
)

// PageRankConfig mirrors spec.md §4.8: fixed damping/tolerance with an
// optional personalization vector (entry points or user-supplied seeds,
// per the open question in spec.md §9 — both are exposed).
type PageRankConfig struct {
	Damping         float64
	Tolerance       float64
	MaxIterations   int
	Personalization map[types.FileID]float64 // nil means uniform
}

func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{Damping: 0.85, Tolerance: 1e-6, MaxIterations: 1000}
}

// PageRank runs the power-iteration method to a fixed-point, returning
// a rank per node. Dangling nodes (no outgoing edges) distribute their
// mass by the personalization vector (uniformly over the whole graph
// when Personalization is nil), the standard fix for a well-formed
// stochastic transition matrix.
func PageRank(g *Graph, cfg PageRankConfig) map[types.FileID]float64 {
	n := len(g.Nodes)
	if n == 0 {
		return map[types.FileID]float64{}
	}

	idx := make(map[types.FileID]int, n)
	for i, node := range g.Nodes {
		idx[node] = i
	}

	outDegree := make([]int, n)
	outEdges := make([][]int, n)
	for _, e := range g.Edges {
		fi, ok1 := idx[e.From]
		ti, ok2 := idx[e.To]
		if !ok1 || !ok2 {
			continue
		}
		outEdges[fi] = append(outEdges[fi], ti)
		outDegree[fi]++
	}

	personalization := make([]float64, n)
	if cfg.Personalization == nil {
		for i := range personalization {
			personalization[i] = 1.0 / float64(n)
		}
	} else {
		var sum float64
		for node, w := range cfg.Personalization {
			if i, ok := idx[node]; ok {
				personalization[i] = w
				sum += w
			}
		}
		if sum > 0 {
			for i := range personalization {
				personalization[i] /= sum
			}
		} else {
			for i := range personalization {
				personalization[i] = 1.0 / float64(n)
			}
		}
	}

	rank := make([]float64, n)
	copy(rank, personalization)

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 1000
	}

	for iter := 0; iter < maxIter; iter++ {
		next := make([]float64, n)
		var danglingMass float64
		for i, r := range rank {
			if outDegree[i] == 0 {
				danglingMass += r
				continue
			}
			share := r / float64(outDegree[i])
			for _, j := range outEdges[i] {
				next[j] += share
			}
		}
		var delta float64
		for i := range next {
			v := cfg.Damping*(next[i]+danglingMass*personalization[i]) + (1-cfg.Damping)*personalization[i]
			delta += abs(v - rank[i])
			next[i] = v
		}
		rank = next
		if delta < cfg.Tolerance {
			break
		}
	}

	result := make(map[types.FileID]float64, n)
	for i, node := range g.Nodes {
		result[node] = rank[i]
	}
	return result
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// TopK returns the K highest-ranked nodes, ties broken by FileID for
// determinism, then the pruned graph keeping only those nodes and
// edges among them.
func TopK(g *Graph, ranks map[types.FileID]float64, k int) *Graph {
	type scored struct {
		id   types.FileID
		rank float64
	}
	scoredNodes := make([]scored, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		scoredNodes = append(scoredNodes, scored{id: n, rank: ranks[n]})
	}
	sort.Slice(scoredNodes, func(i, j int) bool {
		if scoredNodes[i].rank != scoredNodes[j].rank {
			return scoredNodes[i].rank > scoredNodes[j].rank
		}
		return scoredNodes[i].id < scoredNodes[j].id
	})
	if k < len(scoredNodes) {
		scoredNodes = scoredNodes[:k]
	}
	keep := make(map[types.FileID]bool, len(scoredNodes))
	for _, s := range scoredNodes {
		keep[s.id] = true
	}
	return g.Prune(keep)
}

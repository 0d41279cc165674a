package analysis

import (
	"sort"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

// ReferenceEdge is a directed edge in the cross-language reference
// graph (spec.md §3).
type ReferenceEdge struct {
	From types.NodeID
	To   types.NodeID
	Kind types.ReferenceKind
}

// DeadSymbol is one unreached symbol in the final report.
type DeadSymbol struct {
	NodeID     types.NodeID
	FileID     types.FileID
	Confidence types.Confidence
}

// DeadCodeReport lists every symbol the reachability pass never marked live.
type DeadCodeReport struct {
	Dead []DeadSymbol
}

// ReferenceGraph is the phase-1 structure of spec.md §4.6.
type ReferenceGraph struct {
	edges      []ReferenceEdge
	out        map[types.NodeID][]int // node -> indices into edges
	dynamicTargets map[types.NodeID][]types.NodeID // interface/trait method -> all implementors
}

func NewReferenceGraph() *ReferenceGraph {
	return &ReferenceGraph{out: make(map[types.NodeID][]int), dynamicTargets: make(map[types.NodeID][]types.NodeID)}
}

func (g *ReferenceGraph) AddEdge(e ReferenceEdge) {
	g.out[e.From] = append(g.out[e.From], len(g.edges))
	g.edges = append(g.edges, e)
}

// AddDynamicImplementor records a concrete implementor of a
// trait/interface method, so phase 3's dispatch resolution can fan a
// single dynamic call out to every known implementor.
func (g *ReferenceGraph) AddDynamicImplementor(abstractMethod, concreteMethod types.NodeID) {
	g.dynamicTargets[abstractMethod] = append(g.dynamicTargets[abstractMethod], concreteMethod)
}

// EntryPointSet is the phase-2 classification result: symbols
// reachable a priori.
type EntryPointSet map[types.NodeID]bool

// ClassifyEntryPoints walks every node in the dag and marks as entry
// points the functions whose flags include Exported, Public, Test or
// Unsafe (spec.md §4.6). No name-based main detection is done: a main
// function is an entry point only when its node carries one of those
// flags. FFI and
// config-referenced entry points are folded in by the caller via
// MarkExternallyReferenced, since those sources (linker directives,
// manifest files) live outside the unified AST.
func ClassifyEntryPoints(dag *ast.Dag, fileRoots map[types.FileID]types.NodeID) EntryPointSet {
	entries := make(EntryPointSet)
	for _, root := range fileRoots {
		dag.Walk(root, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
			if n.Kind != types.KindFunction {
				return true
			}
			if n.Flags.Has(types.FlagExported) || n.Flags.Has(types.FlagPublic) ||
				n.Flags.Has(types.FlagTest) || n.Flags.Has(types.FlagUnsafe) {
				entries[id] = true
			}
			return true
		})
	}
	return entries
}

// MarkExternallyReferenced folds FFI bindings and config-file
// references (serde derives, manifest entry points) into the entry set.
func (e EntryPointSet) MarkExternallyReferenced(ids ...types.NodeID) {
	for _, id := range ids {
		e[id] = true
	}
}

// reachSet has the same word-array layout as internal/ast's bitset
// (see ast.Dag.DirtyNodes) but is a separate type, since that one is
// unexported.
type reachSet struct {
	words []uint64
}

func newReachSet(n int) *reachSet {
	return &reachSet{words: make([]uint64, (n+63)/64)}
}

func (r *reachSet) set(id types.NodeID) bool {
	w, b := id/64, id%64
	if int(w) >= len(r.words) {
		return false
	}
	before := r.words[w]
	r.words[w] |= 1 << b
	return r.words[w] != before
}

func (r *reachSet) has(id types.NodeID) bool {
	w, b := id/64, id%64
	if int(w) >= len(r.words) {
		return false
	}
	return r.words[w]&(1<<b) != 0
}

// ComputeReachability runs phases 3-5 of spec.md §4.6: resolve dynamic
// dispatch edges, then OR-propagate reachability from entries until
// fixpoint, then emit every unreached function with a confidence.
func ComputeReachability(dag *ast.Dag, graph *ReferenceGraph, entries EntryPointSet, dynamicDispatchEnabled bool) *DeadCodeReport {
	reached := newReachSet(dag.Len())
	queue := make([]types.NodeID, 0, len(entries))
	for id := range entries {
		if reached.set(id) {
			queue = append(queue, id)
		}
	}

	// isDynamicTarget records every node that appears as a possible
	// implementor of some interface/trait method, regardless of
	// whether dispatch resolution actually followed that edge this
	// run. A dead candidate in this set might only look dead because
	// dynamicDispatchEnabled is false or no caller reached the
	// abstract method yet, so it can never be reported at high
	// confidence.
	isDynamicTarget := make(map[types.NodeID]bool)
	for _, impls := range graph.dynamicTargets {
		for _, impl := range impls {
			isDynamicTarget[impl] = true
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, edgeIdx := range graph.out[id] {
			e := graph.edges[edgeIdx]
			if e.Kind == types.RefDynamicDispatch {
				if !dynamicDispatchEnabled {
					continue
				}
				for _, impl := range graph.dynamicTargets[e.To] {
					if reached.set(impl) {
						queue = append(queue, impl)
					}
				}
				continue
			}
			if reached.set(e.To) {
				queue = append(queue, e.To)
			}
		}
	}

	var dead []DeadSymbol
	for id := 0; id < dag.Len(); id++ {
		nodeID := types.NodeID(id)
		node, ok := dag.Node(nodeID)
		if !ok || node.Kind != types.KindFunction {
			continue
		}
		if reached.has(nodeID) {
			continue
		}
		confidence := types.ConfidenceHigh
		if isDynamicTarget[nodeID] {
			if dynamicDispatchEnabled {
				confidence = types.ConfidenceMedium
			} else {
				confidence = types.ConfidenceLow
			}
		}
		dead = append(dead, DeadSymbol{NodeID: nodeID, FileID: types.FileID(node.FileID), Confidence: confidence})
	}

	sort.Slice(dead, func(i, j int) bool {
		if dead[i].FileID != dead[j].FileID {
			return dead[i].FileID < dead[j].FileID
		}
		return dead[i].NodeID < dead[j].NodeID
	})
	return &DeadCodeReport{Dead: dead}
}

// ApplyCoverage removes any symbol covered at runtime from the dead
// list, per spec.md §4.6: "covered ⇒ not dead regardless of static analysis".
func (r *DeadCodeReport) ApplyCoverage(covered map[types.NodeID]bool) {
	kept := r.Dead[:0]
	for _, d := range r.Dead {
		if !covered[d.NodeID] {
			kept = append(kept, d)
		}
	}
	r.Dead = kept
}

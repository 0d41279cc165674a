package analysis

import (
	"sort"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

// FunctionComplexity is the per-function result of the complexity
// analyzer (spec.md §3 ComplexityMetrics).
type FunctionComplexity struct {
	FileID     types.FileID
	NodeID     types.NodeID
	Name       uint64 // NameVector, resolved to text by the caller if needed
	Cyclomatic uint32
	Cognitive  uint32
	BigO       types.BigOClass
}

// FileComplexity aggregates a single file's functions.
type FileComplexity struct {
	FileID     types.FileID
	Functions  []FunctionComplexity
	Sum        uint32
	Max        uint32
}

// ComplexityReport is the project-wide result.
type ComplexityReport struct {
	Files       []FileComplexity
	P50, P75, P90, P99 float64
	Hotspots    []FunctionComplexity // top N by cyclomatic, descending
}

// AnalyzeComplexity walks every function node the dag already carries
// packed complexity for (computed during lowering, per spec.md's
// "compute during extraction" optimization) and aggregates per-file
// and project-wide statistics.
func AnalyzeComplexity(dag *ast.Dag, fileRoots map[types.FileID]types.NodeID, hotspotLimit int) *ComplexityReport {
	var allCyclomatic []float64
	files := make([]FileComplexity, 0, len(fileRoots))
	var allFns []FunctionComplexity

	fileIDs := make([]types.FileID, 0, len(fileRoots))
	for id := range fileRoots {
		fileIDs = append(fileIDs, id)
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for _, fileID := range fileIDs {
		root := fileRoots[fileID]
		fc := FileComplexity{FileID: fileID}
		dag.Walk(root, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
			if n.Kind != types.KindFunction {
				return true
			}
			cyclomatic, cognitive := ast.UnpackComplexity(n.Metadata)
			f := FunctionComplexity{
				FileID:     fileID,
				NodeID:     id,
				Name:       n.NameVector,
				Cyclomatic: cyclomatic,
				Cognitive:  cognitive,
				BigO:       estimateBigO(cyclomatic, cognitive),
			}
			fc.Functions = append(fc.Functions, f)
			fc.Sum += cyclomatic
			if cyclomatic > fc.Max {
				fc.Max = cyclomatic
			}
			allCyclomatic = append(allCyclomatic, float64(cyclomatic))
			allFns = append(allFns, f)
			return true
		})
		files = append(files, fc)
	}

	sort.Slice(allCyclomatic, func(i, j int) bool { return allCyclomatic[i] < allCyclomatic[j] })
	sort.Slice(allFns, func(i, j int) bool {
		if allFns[i].Cyclomatic != allFns[j].Cyclomatic {
			return allFns[i].Cyclomatic > allFns[j].Cyclomatic
		}
		if allFns[i].FileID != allFns[j].FileID {
			return allFns[i].FileID < allFns[j].FileID
		}
		return allFns[i].NodeID < allFns[j].NodeID
	})
	if hotspotLimit > 0 && len(allFns) > hotspotLimit {
		allFns = allFns[:hotspotLimit]
	}

	return &ComplexityReport{
		Files:    files,
		P50:      percentileValue(allCyclomatic, 50),
		P75:      percentileValue(allCyclomatic, 75),
		P90:      percentileValue(allCyclomatic, 90),
		P99:      percentileValue(allCyclomatic, 99),
		Hotspots: allFns,
	}
}

// percentileValue returns the value at the given percentile (0-100)
// of a value set already sorted ascending, taking the element at index
// floor(p/100 * (n-1)).
func percentileValue(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int((p / 100) * float64(len(sorted)-1))
	return sorted[rank]
}

// estimateBigO buckets a function by complexity as a coarse stand-in
// for real loop-depth/recursion analysis: low complexity reads as
// constant/linear, high complexity as quadratic or worse, per spec.md
// §4.4's bucket list. Actual loop-nesting measurement happens in
// internal/parser's cognitive walk (nesting level tracked there);
// this analyzer only buckets the two numbers it already has.
func estimateBigO(cyclomatic, cognitive uint32) types.BigOClass {
	switch {
	case cyclomatic <= 1:
		return types.BigOConstant
	case cyclomatic <= 5 && cognitive <= 5:
		return types.BigOLinear
	case cyclomatic <= 10:
		return types.BigOLinearithmic
	case cyclomatic <= 20:
		return types.BigOQuadratic
	default:
		return types.BigOUnknown
	}
}

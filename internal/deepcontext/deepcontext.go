// Package deepcontext fuses the individual analyzers into the single
// report of spec.md §4.10: a quality scorecard, defect hotspots,
// prioritized recommendations, and an annotated file tree.
package deepcontext

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codelens/internal/analysis"
	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/discovery"
	"github.com/standardbeagle/codelens/internal/gitutil"
	"github.com/standardbeagle/codelens/internal/types"
)

// Config enumerates which analyses to include and their thresholds,
// per spec.md §4.10 ("accepts a config enumerating which analyses to
// include").
type Config struct {
	IncludeComplexity bool
	IncludeChurn      bool
	IncludeDuplicates bool
	IncludeDeadCode   bool
	IncludeSATD       bool
	IncludeTDG        bool

	HotspotLimit         int
	DuplicateConfig      analysis.DuplicateConfig
	DynamicDispatch      bool
	SkipTestFilesForSATD bool
	TDGWeights           analysis.TDGWeights
}

func DefaultConfig() Config {
	return Config{
		IncludeComplexity: true,
		IncludeChurn:      true,
		IncludeDuplicates: true,
		IncludeDeadCode:   true,
		IncludeSATD:       true,
		IncludeTDG:        true,
		HotspotLimit:      25,
		DuplicateConfig: analysis.DuplicateConfig{
			ShingleSize:  5,
			MinGroupSize: 2,
			JaccardMin:   0.8,
		},
		TDGWeights: analysis.DefaultTDGWeights(),
	}
}

// Inputs gathers everything the orchestrator's analyzers need. Any
// field may be the zero value; the corresponding analysis is skipped
// and the scorecard notes its absence, per spec.md §4.10's graceful
// degradation.
type Inputs struct {
	Dag          *ast.Dag
	FileRoots    map[types.FileID]types.NodeID
	FileContent  map[types.FileID][]byte
	FilePaths    map[types.FileID]string
	Files        []discovery.File
	GitProvider  *gitutil.Provider
	Comments     []analysis.Comment
	RefGraph     *analysis.ReferenceGraph
	EntryPoints  analysis.EntryPointSet
	CoveredNodes map[types.NodeID]bool
}

// Scorecard is the fused quality summary of spec.md §4.10.
type Scorecard struct {
	OverallHealth   float64
	Complexity      *float64
	Maintainability *float64
	TechDebt        *float64
	TestCoverage    *float64
	Modularity      *float64
	MissingSubscores []string
}

// Recommendation is one prioritized action item.
type Recommendation struct {
	Title    string
	Priority int // 1 (highest) .. 5
	Effort   string
	Impact   string
	FilePath string
}

// AnnotatedFile pairs a discovered file with its worst function
// cyclomatic complexity, churn score, SATD count and dead-symbol count.
type AnnotatedFile struct {
	Path         string
	MaxCyclomatic uint32
	ChurnScore    float64
	SATDCount     int
	DeadSymbols   int
}

// Report is the top-level deep-context result.
type Report struct {
	Scorecard       Scorecard
	Hotspots        []analysis.DefectScore
	Recommendations []Recommendation
	FileTree        []AnnotatedFile

	Complexity *analysis.ComplexityReport
	Churn      *analysis.ChurnReport
	Clones     []analysis.CloneGroup
	DeadCode   *analysis.DeadCodeReport
	SATD       []analysis.SATDItem
}

// Run executes every enabled analysis concurrently (spec.md §5: "analyses
// over disjoint file sets run in parallel"), then fuses the results.
// A failure in one optional analysis does not abort the others; it is
// recorded as a missing subscore rather than propagated.
func Run(ctx context.Context, in Inputs, cfg Config) (*Report, error) {
	report := &Report{}
	var missing []string

	g, gctx := errgroup.WithContext(ctx)

	if cfg.IncludeComplexity && in.Dag != nil {
		g.Go(func() error {
			report.Complexity = analysis.AnalyzeComplexity(in.Dag, in.FileRoots, cfg.HotspotLimit)
			return nil
		})
	} else {
		missing = append(missing, "complexity")
	}

	if cfg.IncludeChurn && in.GitProvider != nil {
		g.Go(func() error {
			paths := make([]string, 0, len(in.Files))
			for _, f := range in.Files {
				paths = append(paths, f.Rel)
			}
			rep, err := analysis.AnalyzeChurn(gctx, in.GitProvider, paths)
			if err != nil {
				return nil // churn is best-effort; graceful degradation
			}
			report.Churn = rep
			return nil
		})
	} else {
		missing = append(missing, "churn")
	}

	if cfg.IncludeDuplicates && in.Dag != nil {
		g.Go(func() error {
			frags := analysis.ExtractFragments(in.Dag, in.FileRoots, in.FileContent, cfg.DuplicateConfig)
			report.Clones = analysis.DetectClones(frags, cfg.DuplicateConfig)
			return nil
		})
	} else {
		missing = append(missing, "duplicates")
	}

	if cfg.IncludeDeadCode && in.Dag != nil && in.RefGraph != nil {
		g.Go(func() error {
			dead := analysis.ComputeReachability(in.Dag, in.RefGraph, in.EntryPoints, cfg.DynamicDispatch)
			if in.CoveredNodes != nil {
				dead.ApplyCoverage(in.CoveredNodes)
			}
			report.DeadCode = dead
			return nil
		})
	} else {
		missing = append(missing, "dead_code")
	}

	if cfg.IncludeSATD && in.Comments != nil {
		g.Go(func() error {
			report.SATD = analysis.DetectSATD(in.Comments, cfg.SkipTestFilesForSATD, true)
			return nil
		})
	} else {
		missing = append(missing, "satd")
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if cfg.IncludeChurn && in.GitProvider != nil && report.Churn == nil {
		missing = append(missing, "churn") // churn ran but failed
	}

	if cfg.IncludeTDG {
		fuseTDG(report, in, cfg, &missing)
	} else {
		missing = append(missing, "tdg")
	}

	report.Scorecard = buildScorecard(report, missing)
	report.Recommendations = buildRecommendations(report)
	report.FileTree = buildFileTree(in, report)

	return report, nil
}

// fuseTDG combines every analyzer's per-function contribution into a
// DefectScore list, sorted descending for the hotspot view.
func fuseTDG(report *Report, in Inputs, cfg Config, missing *[]string) {
	if report.Complexity == nil {
		*missing = append(*missing, "tdg")
		return
	}

	churnByFile := map[string]float64{}
	if report.Churn != nil {
		for _, r := range report.Churn.Records {
			churnByFile[r.FilePath] = r.Score
		}
	}

	dupCount := map[types.NodeID]int{}
	for _, group := range report.Clones {
		for _, f := range group.Fragments {
			dupCount[f.RootNode]++
		}
	}

	deadSet := map[types.NodeID]bool{}
	if report.DeadCode != nil {
		for _, d := range report.DeadCode.Dead {
			deadSet[d.NodeID] = true
		}
	}

	available := 1 // complexity always present here
	if report.Churn != nil {
		available++
	}
	if report.Clones != nil {
		available++
	}
	if report.DeadCode != nil {
		available++
	}

	scores := make([]analysis.DefectScore, 0)
	for _, file := range report.Complexity.Files {
		churnScore := churnByFile[in.FilePaths[file.FileID]]
		for _, fn := range file.Functions {
			complexityScore := analysis.NormalizeComplexity(fn.Cyclomatic, report.Complexity.P99)
			duplication := 0.0
			if dupCount[fn.NodeID] > 0 {
				duplication = 1.0
			}
			testCoverage := 0.0
			if deadSet[fn.NodeID] {
				testCoverage = 1.0 // dead code proxies for zero exercised coverage
			}
			score := analysis.FuseTDG(file.FileID, fn.NodeID, complexityScore, churnScore, duplication, 0, 0, testCoverage, available, cfg.TDGWeights)
			scores = append(scores, score)
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		if scores[i].FileID != scores[j].FileID {
			return scores[i].FileID < scores[j].FileID
		}
		return scores[i].NodeID < scores[j].NodeID
	})
	report.Hotspots = scores
}

func buildScorecard(report *Report, missing []string) Scorecard {
	sc := Scorecard{MissingSubscores: missing}

	var subscores []float64

	if report.Complexity != nil {
		v := 100 * (1 - analysis.NormalizeComplexity(uint32(report.Complexity.P90), report.Complexity.P99))
		sc.Complexity = &v
		subscores = append(subscores, v)
	}

	if report.DeadCode != nil {
		maintainability := 100.0
		if n := len(report.DeadCode.Dead); n > 0 {
			maintainability = clampScore(100 - float64(n)*2)
		}
		sc.Maintainability = &maintainability
		subscores = append(subscores, maintainability)
	}

	if len(report.Hotspots) > 0 {
		var sum float64
		for _, h := range report.Hotspots {
			sum += h.Total
		}
		avg := sum / float64(len(report.Hotspots))
		techDebt := clampScore(100 * (1 - avg))
		sc.TechDebt = &techDebt
		subscores = append(subscores, techDebt)
	}

	if report.Clones != nil {
		modularity := clampScore(100 - float64(len(report.Clones))*3)
		sc.Modularity = &modularity
		subscores = append(subscores, modularity)
	}

	if len(subscores) == 0 {
		sc.OverallHealth = 0
		return sc
	}
	var sum float64
	for _, s := range subscores {
		sum += s
	}
	sc.OverallHealth = sum / float64(len(subscores))
	return sc
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// buildRecommendations turns the highest-priority hotspots and SATD
// findings into ranked action items.
func buildRecommendations(report *Report) []Recommendation {
	var recs []Recommendation

	limit := len(report.Hotspots)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		h := report.Hotspots[i]
		priority := 1
		if h.Total < 0.5 {
			priority = 3
		}
		recs = append(recs, Recommendation{
			Title:    "reduce complexity and duplication",
			Priority: priority,
			Effort:   effortForScore(h.Total),
			Impact:   "high",
		})
	}

	for _, item := range report.SATD {
		if item.Severity < types.SeverityHigh {
			continue
		}
		recs = append(recs, Recommendation{
			Title:    "resolve " + item.Category.String() + " debt marker",
			Priority: 2,
			Effort:   "small",
			Impact:   item.Severity.String(),
			FilePath: item.File,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

func effortForScore(total float64) string {
	switch {
	case total > 0.75:
		return "large"
	case total > 0.4:
		return "medium"
	default:
		return "small"
	}
}

func buildFileTree(in Inputs, report *Report) []AnnotatedFile {
	tree := make([]AnnotatedFile, 0, len(in.Files))

	churnByPath := map[string]float64{}
	if report.Churn != nil {
		for _, r := range report.Churn.Records {
			churnByPath[r.FilePath] = r.Score
		}
	}
	satdByPath := map[string]int{}
	for _, item := range report.SATD {
		satdByPath[item.File]++
	}
	deadByFile := map[types.FileID]int{}
	if report.DeadCode != nil {
		for _, d := range report.DeadCode.Dead {
			deadByFile[d.FileID]++
		}
	}
	maxCycByFile := map[types.FileID]uint32{}
	if report.Complexity != nil {
		for _, f := range report.Complexity.Files {
			maxCycByFile[f.FileID] = f.Max
		}
	}

	fileIDByPath := make(map[string]types.FileID, len(in.FilePaths))
	for id, path := range in.FilePaths {
		fileIDByPath[path] = id
	}

	for _, f := range in.Files {
		fileID := fileIDByPath[f.Rel]
		tree = append(tree, AnnotatedFile{
			Path:          f.Rel,
			MaxCyclomatic: maxCycByFile[fileID],
			ChurnScore:    churnByPath[f.Rel],
			SATDCount:     satdByPath[f.Rel],
			DeadSymbols:   deadByFile[fileID],
		})
	}

	sort.Slice(tree, func(i, j int) bool { return tree[i].Path < tree[j].Path })
	return tree
}

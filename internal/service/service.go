// Package service implements the single core Service spec.md §4.11
// describes, shared by the CLI, JSON-RPC/MCP, and HTTP adapters. Each
// adapter only translates its wire format into a Request and back.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/standardbeagle/codelens/internal/analysis"
	"github.com/standardbeagle/codelens/internal/cache"
	"github.com/standardbeagle/codelens/internal/config"
	"github.com/standardbeagle/codelens/internal/deepcontext"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/gitutil"
	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/mermaid"
	"github.com/standardbeagle/codelens/internal/metrics"
	"github.com/standardbeagle/codelens/internal/parser"
	"github.com/standardbeagle/codelens/internal/watch"
)

// AnalyzeRequest is the common envelope every analyze_* operation
// accepts: a workspace root and the analysis-specific config knobs.
type AnalyzeRequest struct {
	WorkspaceRoot string
	Config        *config.Config
	HotspotLimit  int
}

// Service exposes the core operations named in spec.md §4.11.
type Service interface {
	ListTemplates(ctx context.Context) ([]Template, error)
	GenerateTemplate(ctx context.Context, id string) (Template, error)

	AnalyzeComplexity(ctx context.Context, req AnalyzeRequest) (*analysis.ComplexityReport, error)
	AnalyzeChurn(ctx context.Context, req AnalyzeRequest) (*analysis.ChurnReport, error)
	AnalyzeDAG(ctx context.Context, req AnalyzeRequest) (string, error) // rendered Mermaid diagram
	AnalyzeDeadCode(ctx context.Context, req AnalyzeRequest) (*analysis.DeadCodeReport, error)
	AnalyzeSATD(ctx context.Context, req AnalyzeRequest) ([]analysis.SATDItem, error)
	AnalyzeDuplicates(ctx context.Context, req AnalyzeRequest) ([]analysis.CloneGroup, error)
	AnalyzeTDG(ctx context.Context, req AnalyzeRequest) ([]analysis.DefectScore, error)
	AnalyzeDeepContext(ctx context.Context, req AnalyzeRequest) (*deepcontext.Report, error)
}

// CoreService is the concrete Service implementation. It owns the
// parser registry, metrics registry, and logger; adapters construct
// one instance and share it across requests.
type CoreService struct {
	Registry *parser.Registry
	Metrics  *metrics.Registry
	Log      *logging.Logger

	// workspaceCache memoizes LoadWorkspace by root across calls in a
	// long-running serve process, so repeated analyze_* calls against
	// the same root don't re-walk and re-parse every file.
	workspaceCache *cache.Cache

	// Watch, when true, starts a background fsnotify watcher the first
	// time a root is loaded, invalidating that root's cache entry on
	// any change under it instead of relying on TTL expiry.
	Watch     bool
	watchedMu sync.Mutex
	watched   map[string]*watch.Watcher

	// diskCaches lazily builds one LayeredCache per distinct
	// config.Cache.Dir, used to persist analyzer results across process
	// restarts when a request's config sets Cache.PersistToDisk. Keyed
	// by directory rather than constructed once, since different
	// workspaces can point at different cache dirs.
	diskMu     sync.Mutex
	diskCaches map[string]*cache.LayeredCache
}

func New(log *logging.Logger) *CoreService {
	return &CoreService{
		Registry:       parser.NewDefaultRegistry(),
		Metrics:        metrics.New(),
		Log:            log,
		workspaceCache: cache.New(cache.Config{MaxEntries: 32, TTL: 10 * time.Minute}),
		watched:        make(map[string]*watch.Watcher),
		diskCaches:     make(map[string]*cache.LayeredCache),
	}
}

// complexityCache returns the persistent LayeredCache for cfg's cache
// directory, or nil if cfg doesn't opt into disk persistence. Per
// spec.md §4.3/§6, the disk tier survives process restarts; the
// complexity report is the simplest fully JSON-serializable analyzer
// result (no AST pointers), so it's the one wired to disk first.
func (s *CoreService) complexityCache(cfg *config.Config) *cache.LayeredCache {
	if cfg == nil || !cfg.Cache.PersistToDisk {
		return nil
	}
	s.diskMu.Lock()
	defer s.diskMu.Unlock()
	if lc, ok := s.diskCaches[cfg.Cache.Dir]; ok {
		return lc
	}
	disk, err := cache.NewDiskStore(filepath.Join(cfg.Cache.Dir, "complexity"))
	if err != nil {
		s.Log.Errorf("disk cache unavailable at %s: %v", cfg.Cache.Dir, err)
		return nil
	}
	mem := cache.New(cache.Config{MaxEntries: cfg.Cache.MaxEntries, MaxBytes: cfg.Cache.MaxBytes, TTL: cfg.Cache.TTL})
	lc := cache.NewLayeredCache(mem, disk)
	s.diskCaches[cfg.Cache.Dir] = lc
	return lc
}

// Close stops every background watcher started for this service.
func (s *CoreService) Close() {
	s.watchedMu.Lock()
	defer s.watchedMu.Unlock()
	for root, w := range s.watched {
		w.Stop()
		delete(s.watched, root)
	}
}

func (s *CoreService) watchRoot(root string) {
	if !s.Watch {
		return
	}
	s.watchedMu.Lock()
	defer s.watchedMu.Unlock()
	if _, ok := s.watched[root]; ok {
		return
	}
	w := watch.NewWatcher(root, func() {
		s.workspaceCache.Invalidate(root)
		s.Log.Infof("workspace %s changed, cache invalidated", root)
	})
	if err := w.Start(); err != nil {
		s.Log.Errorf("failed to watch %s: %v", root, err)
		return
	}
	s.watched[root] = w
}

// instrument wraps op in a metrics.Observe call and logs failures,
// matching the "service metrics: counter, duration histogram, error
// counter per method" requirement of spec.md §4.11.
func (s *CoreService) instrument(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.Metrics.Observe(method, time.Since(start), err)
	if err != nil {
		s.Log.Errorf("%s failed: %v", method, err)
	}
	return err
}

func (s *CoreService) ListTemplates(ctx context.Context) ([]Template, error) {
	return ListTemplates(), nil
}

func (s *CoreService) GenerateTemplate(ctx context.Context, id string) (Template, error) {
	t, ok := FindTemplate(id)
	if !ok {
		err := cerrors.NotFound("generate_template", id)
		if suggestion, ok := SuggestTemplate(id); ok {
			err.Underlying = fmt.Errorf("%w (did you mean %q?)", err.Underlying, suggestion)
		}
		return Template{}, err
	}
	return t, nil
}

func (s *CoreService) loadWorkspace(req AnalyzeRequest) (*Workspace, error) {
	cfg := req.Config
	if cfg == nil {
		cfg = config.Default()
	}

	v, err := s.workspaceCache.GetOrBuild(req.WorkspaceRoot, func() (any, error) {
		return LoadWorkspace(req.WorkspaceRoot, &cfg.Discovery, s.Registry)
	})
	if err != nil {
		return nil, err
	}
	s.watchRoot(req.WorkspaceRoot)
	return v.(*Workspace), nil
}

func (s *CoreService) AnalyzeComplexity(ctx context.Context, req AnalyzeRequest) (*analysis.ComplexityReport, error) {
	var report *analysis.ComplexityReport
	err := s.instrument("analyze_complexity", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		limit := req.HotspotLimit
		if limit <= 0 {
			limit = 25
		}
		build := func() (any, error) {
			return analysis.AnalyzeComplexity(ws.Dag, ws.FileRoots, limit), nil
		}

		lc := s.complexityCache(req.Config)
		if lc == nil {
			v, _ := build()
			report = v.(*analysis.ComplexityReport)
			return nil
		}
		var dst analysis.ComplexityReport
		v, err := lc.GetOrBuild(req.WorkspaceRoot, &dst, build)
		if err != nil {
			return err
		}
		report = v.(*analysis.ComplexityReport)
		return nil
	})
	return report, err
}

func (s *CoreService) AnalyzeChurn(ctx context.Context, req AnalyzeRequest) (*analysis.ChurnReport, error) {
	var report *analysis.ChurnReport
	err := s.instrument("analyze_churn", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		provider, err := gitutil.NewProvider(ctx, req.WorkspaceRoot)
		if err != nil {
			return cerrors.IoError("analyze_churn", err)
		}
		paths := make([]string, 0, len(ws.Files))
		for _, f := range ws.Files {
			paths = append(paths, f.Rel)
		}
		report, err = analysis.AnalyzeChurn(ctx, provider, paths)
		return err
	})
	return report, err
}

func (s *CoreService) AnalyzeDAG(ctx context.Context, req AnalyzeRequest) (string, error) {
	var diagram string
	err := s.instrument("analyze_dag", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		g := buildImportGraph(ws)
		diagram, err = mermaid.Render(g, mermaidOptions(ws))
		return err
	})
	return diagram, err
}

func (s *CoreService) AnalyzeDeadCode(ctx context.Context, req AnalyzeRequest) (*analysis.DeadCodeReport, error) {
	var report *analysis.DeadCodeReport
	err := s.instrument("analyze_dead_code", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		graph := analysis.NewReferenceGraph()
		entries := analysis.ClassifyEntryPoints(ws.Dag, ws.FileRoots)
		dynamicDispatch := true
		if req.Config != nil {
			dynamicDispatch = req.Config.Analysis.DeadCodeAllowDynamicDispatch
		}
		report = analysis.ComputeReachability(ws.Dag, graph, entries, dynamicDispatch)
		return nil
	})
	return report, err
}

func (s *CoreService) AnalyzeSATD(ctx context.Context, req AnalyzeRequest) ([]analysis.SATDItem, error) {
	var items []analysis.SATDItem
	err := s.instrument("analyze_satd", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		comments := extractComments(ws)
		skip, downweight := false, true
		if req.Config != nil {
			skip = req.Config.Analysis.SATDSkipTestFiles
			downweight = req.Config.Analysis.SATDDownweight
		}
		items = analysis.DetectSATD(comments, skip, downweight)
		return nil
	})
	return items, err
}

func (s *CoreService) AnalyzeDuplicates(ctx context.Context, req AnalyzeRequest) ([]analysis.CloneGroup, error) {
	var groups []analysis.CloneGroup
	err := s.instrument("analyze_duplicates", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}
		cfg := duplicateConfig(req.Config)
		frags := analysis.ExtractFragments(ws.Dag, ws.FileRoots, ws.FileContent, cfg)
		groups = analysis.DetectClones(frags, cfg)
		return nil
	})
	return groups, err
}

func (s *CoreService) AnalyzeTDG(ctx context.Context, req AnalyzeRequest) ([]analysis.DefectScore, error) {
	var scores []analysis.DefectScore
	err := s.instrument("analyze_tdg", func() error {
		rep, err := s.AnalyzeDeepContext(ctx, req)
		if err != nil {
			return err
		}
		scores = rep.Hotspots
		return nil
	})
	return scores, err
}

func (s *CoreService) AnalyzeDeepContext(ctx context.Context, req AnalyzeRequest) (*deepcontext.Report, error) {
	var report *deepcontext.Report
	err := s.instrument("analyze_deep_context", func() error {
		ws, err := s.loadWorkspace(req)
		if err != nil {
			return err
		}

		cfg := deepcontext.DefaultConfig()
		cfg.DuplicateConfig = duplicateConfig(req.Config)
		if req.Config != nil {
			cfg.SkipTestFilesForSATD = req.Config.Analysis.SATDSkipTestFiles
			cfg.DynamicDispatch = req.Config.Analysis.DeadCodeAllowDynamicDispatch
		}

		graph := analysis.NewReferenceGraph()
		entries := analysis.ClassifyEntryPoints(ws.Dag, ws.FileRoots)
		provider, gitErr := gitutil.NewProvider(ctx, req.WorkspaceRoot)

		in := deepcontext.Inputs{
			Dag:         ws.Dag,
			FileRoots:   ws.FileRoots,
			FileContent: ws.FileContent,
			FilePaths:   ws.FilePaths,
			Files:       ws.Files,
			Comments:    extractComments(ws),
			RefGraph:    graph,
			EntryPoints: entries,
		}
		if gitErr == nil {
			in.GitProvider = provider
		} else {
			cfg.IncludeChurn = false
		}

		report, err = deepcontext.Run(ctx, in, cfg)
		return err
	})
	return report, err
}

func duplicateConfig(cfg *config.Config) analysis.DuplicateConfig {
	if cfg == nil {
		return analysis.DuplicateConfig{ShingleSize: 5, MinGroupSize: 2, JaccardMin: 0.8}
	}
	return analysis.DuplicateConfig{
		ShingleSize:  cfg.Analysis.DuplicateShingleSize,
		MinGroupSize: cfg.Analysis.DuplicateMinGroupSize,
		JaccardMin:   cfg.Analysis.DuplicateJaccardMin,
		Aggressive:   cfg.Analysis.DuplicateAggressive,
	}
}


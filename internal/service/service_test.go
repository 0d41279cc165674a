package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/config"
	"github.com/standardbeagle/codelens/internal/logging"
)

const pySource = `def add(a, b):
    # TODO(security): validate input
    return a + b

def branchy(x):
    if x > 0:
        if x > 10:
            return "big"
        return "small"
    return "negative"
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.py"), []byte(pySource), 0644))
	return dir
}

func TestListTemplatesIsStable(t *testing.T) {
	svc := New(logging.NoOp)
	a, err := svc.ListTemplates(context.Background())
	require.NoError(t, err)
	b, err := svc.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEmpty(t, a)
}

func TestGenerateTemplateNotFound(t *testing.T) {
	svc := New(logging.NoOp)
	_, err := svc.GenerateTemplate(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestLoadWorkspaceIsCachedAcrossCalls(t *testing.T) {
	dir := writeFixture(t)
	svc := New(logging.NoOp)

	ws1, err := svc.loadWorkspace(AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)
	ws2, err := svc.loadWorkspace(AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)

	// Same *Workspace pointer: the second call was served from
	// workspaceCache instead of re-walking and re-parsing the tree.
	require.Same(t, ws1, ws2)
}

func TestWatchModeInvalidatesCacheOnFileChange(t *testing.T) {
	dir := writeFixture(t)
	svc := New(logging.NoOp)
	svc.Watch = true
	defer svc.Close()

	ws1, err := svc.loadWorkspace(AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.py"), []byte("def noop():\n    pass\n"), 0644))

	require.Eventually(t, func() bool {
		_, hit := svc.workspaceCache.Get(dir)
		return !hit
	}, 3*time.Second, 10*time.Millisecond, "cache entry was not invalidated after file change")

	ws2, err := svc.loadWorkspace(AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)
	require.NotSame(t, ws1, ws2)
	require.Len(t, ws2.Files, 2)
}

func TestAnalyzeComplexityOverFixtureWorkspace(t *testing.T) {
	dir := writeFixture(t)
	svc := New(logging.NoOp)

	report, err := svc.AnalyzeComplexity(context.Background(), AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.GreaterOrEqual(t, report.Files[0].Max, uint32(2))

	snap := svc.Metrics.Snapshot()
	require.Equal(t, int64(1), snap["analyze_complexity"].Calls)
}

func TestAnalyzeComplexityPersistsToDiskAcrossServiceInstances(t *testing.T) {
	dir := writeFixture(t)
	cacheDir := t.TempDir()
	cfg := config.Default()
	cfg.Cache.PersistToDisk = true
	cfg.Cache.Dir = cacheDir

	svc1 := New(logging.NoOp)
	report1, err := svc1.AnalyzeComplexity(context.Background(), AnalyzeRequest{WorkspaceRoot: dir, Config: cfg})
	require.NoError(t, err)

	// A second, independent CoreService (no shared memory cache) must
	// still hit the disk tier rather than silently recomputing, since
	// the whole point of PersistToDisk is surviving process restarts.
	svc2 := New(logging.NoOp)
	report2, err := svc2.AnalyzeComplexity(context.Background(), AnalyzeRequest{WorkspaceRoot: dir, Config: cfg})
	require.NoError(t, err)
	require.Equal(t, report1.Files, report2.Files)

	entries, err := os.ReadDir(filepath.Join(cacheDir, "complexity"))
	require.NoError(t, err)
	require.NotEmpty(t, entries, "PersistToDisk must leave cache files on disk")
}

func TestAnalyzeSATDFindsSecurityEscalatedMarker(t *testing.T) {
	dir := writeFixture(t)
	svc := New(logging.NoOp)

	items, err := svc.AnalyzeSATD(context.Background(), AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)
	require.NotEmpty(t, items)
}

func TestAnalyzeDAGRendersValidDiagram(t *testing.T) {
	dir := writeFixture(t)
	svc := New(logging.NoOp)

	diagram, err := svc.AnalyzeDAG(context.Background(), AnalyzeRequest{WorkspaceRoot: dir})
	require.NoError(t, err)
	require.Contains(t, diagram, "graph TD")
	require.Contains(t, diagram, "sample_py")
}

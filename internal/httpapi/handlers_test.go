package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/service"
)

const pySource = `def add(a, b):
    # TODO(security): validate input
    return a + b
`

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.py"), []byte(pySource), 0644))
	s := NewServer(service.New(logging.NoOp), DefaultConfig(), logging.NoOp)
	return s.router(), dir
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthReturnsOK(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleListTemplatesReturnsArray(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out)
}

func TestHandleGetTemplateNotFoundReturns404(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/templates/does-not-exist", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAnalyzeComplexityMissingWorkspaceRootReturns422(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := postJSON(t, r, "/analyze/complexity", map[string]any{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleAnalyzeComplexityOverFixtureWorkspace(t *testing.T) {
	r, dir := newTestRouter(t)
	rec := postJSON(t, r, "/analyze/complexity", map[string]any{"workspace_root": dir})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Contains(t, out, "Files")
}

func TestHandleAnalyzeDAGRendersDiagram(t *testing.T) {
	r, dir := newTestRouter(t)
	rec := postJSON(t, r, "/analyze/dag", map[string]any{"workspace_root": dir})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Contains(t, out["diagram"], "graph TD")
}

func TestHandleMetricsReflectsPriorCalls(t *testing.T) {
	r, dir := newTestRouter(t)
	postJSON(t, r, "/analyze/complexity", map[string]any{"workspace_root": dir})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]struct {
		Calls int64 `json:"Calls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, int64(1), out["analyze_complexity"].Calls)
}

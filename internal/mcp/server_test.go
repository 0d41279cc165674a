package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/service"
)

const pySource = `def add(a, b):
    # TODO(security): validate input
    return a + b
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.py"), []byte(pySource), 0644))
	svc := service.New(logging.NoOp)
	return NewServer(svc, logging.NoOp), dir
}

func callRequest(t *testing.T, params interface{}) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
}

func decodeText(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleListTemplatesReturnsNonEmptyCatalog(t *testing.T) {
	s, _ := newTestServer(t)
	result, err := s.handleListTemplates(context.Background(), callRequest(t, map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
}

func TestHandleGenerateTemplateMissingIDIsValidationFailed(t *testing.T) {
	s, _ := newTestServer(t)
	result, err := s.handleGenerateTemplate(context.Background(), callRequest(t, map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	body := decodeText(t, result)
	require.Equal(t, "validation_failed", body["kind"])
}

func TestHandleAnalyzeComplexityMissingWorkspaceRootIsValidationFailed(t *testing.T) {
	s, _ := newTestServer(t)
	result, err := s.handleAnalyzeComplexity(context.Background(), callRequest(t, map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestHandleAnalyzeComplexityOverFixtureWorkspace(t *testing.T) {
	s, dir := newTestServer(t)
	result, err := s.handleAnalyzeComplexity(context.Background(), callRequest(t, map[string]any{"workspace_root": dir}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	body := decodeText(t, result)
	require.Contains(t, body, "Files")
}

func TestHandleAnalyzeDAGRendersMermaidDiagram(t *testing.T) {
	s, dir := newTestServer(t)
	result, err := s.handleAnalyzeDAG(context.Background(), callRequest(t, map[string]any{"workspace_root": dir}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	body := decodeText(t, result)
	require.Contains(t, body["diagram"], "graph TD")
}

func TestHandleAnalyzeDeepContextOverFixtureWorkspace(t *testing.T) {
	s, dir := newTestServer(t)
	result, err := s.handleAnalyzeDeepContext(context.Background(), callRequest(t, map[string]any{"workspace_root": dir}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	body := decodeText(t, result)
	require.Contains(t, body, "Scorecard")
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codelens/internal/logging"
	"github.com/standardbeagle/codelens/internal/service"
)

// Server adapts service.Service onto the MCP tool-call protocol, the
// same shape as the teacher's internal/mcp.Server: one *mcp.Server
// wrapping a domain service, tools registered in a constructor, stdio
// as the sole transport.
type Server struct {
	svc    service.Service
	server *mcp.Server
	log    *logging.Logger
}

// NewServer builds the MCP adapter over svc. log must be in stdio
// mode: every AddTool handler runs while stdin/stdout carry JSON-RPC
// framing, so any stray diagnostic write would corrupt a response.
func NewServer(svc service.Service, log *logging.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "codelens-mcp-server",
			Version: "0.1.0",
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves tools/call and friends over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func workspaceRootSchema() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"workspace_root": {
			Type:        "string",
			Description: "Absolute path to the project root to analyze",
		},
	}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "list_templates",
		Description: "List the available scaffold templates.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleListTemplates)

	s.server.AddTool(&mcp.Tool{
		Name:        "generate_template",
		Description: "Resolve a scaffold template by id.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"id": {Type: "string", Description: "Template id from list_templates"}},
			Required:   []string{"id"},
		},
	}, s.handleGenerateTemplate)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_complexity",
		Description: "Compute cyclomatic and cognitive complexity per function, with hotspot ranking.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: mergeSchemas(workspaceRootSchema(), map[string]*jsonschema.Schema{
				"hotspot_limit": {Type: "integer", Description: "Max hotspots to return (default 25)"},
			}),
			Required: []string{"workspace_root"},
		},
	}, s.handleAnalyzeComplexity)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_code_churn",
		Description: "Compute per-file git churn (commit frequency, authorship spread, recency).",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeChurn)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_dag",
		Description: "Render the module import graph as a Mermaid diagram, colored by complexity.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeDAG)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_dead_code",
		Description: "Flag symbols unreachable from any entry point.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeDeadCode)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_satd",
		Description: "Extract self-admitted technical debt markers (TODO/FIXME/HACK/...) with severity.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeSATD)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_duplicates",
		Description: "Find near-duplicate code fragments via shingled MinHash/Jaccard clustering.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeDuplicates)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_tdg",
		Description: "Rank functions by fused technical-debt-gradient defect score.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeTDG)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_deep_context",
		Description: "Run every enabled analysis and fuse a quality scorecard, hotspots, recommendations, and an annotated file tree.",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: workspaceRootSchema(), Required: []string{"workspace_root"}},
	}, s.handleAnalyzeDeepContext)
}

func mergeSchemas(maps ...map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/service"
)

func (s *Server) handleListTemplates(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.svc.ListTemplates(ctx)
	if err != nil {
		return errorResponse("list_templates", err)
	}
	return jsonResponse(templates)
}

func (s *Server) handleGenerateTemplate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p generateTemplateParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return errorResponse("generate_template", cerrors.InvalidRequest("generate_template", err))
	}
	if p.ID == "" {
		return errorResponse("generate_template", cerrors.ValidationFailed("generate_template", "id", errMissingID))
	}
	tpl, err := s.svc.GenerateTemplate(ctx, p.ID)
	if err != nil {
		return errorResponse("generate_template", err)
	}
	return jsonResponse(tpl)
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_complexity")
	if err != nil {
		return errorResponse("analyze_complexity", err)
	}
	report, err := s.svc.AnalyzeComplexity(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot, HotspotLimit: p.HotspotLimit})
	if err != nil {
		return errorResponse("analyze_complexity", err)
	}
	return jsonResponse(report)
}

func (s *Server) handleAnalyzeChurn(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_code_churn")
	if err != nil {
		return errorResponse("analyze_code_churn", err)
	}
	report, err := s.svc.AnalyzeChurn(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_code_churn", err)
	}
	return jsonResponse(report)
}

func (s *Server) handleAnalyzeDAG(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_dag")
	if err != nil {
		return errorResponse("analyze_dag", err)
	}
	diagram, err := s.svc.AnalyzeDAG(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_dag", err)
	}
	return jsonResponse(map[string]string{"diagram": diagram})
}

func (s *Server) handleAnalyzeDeadCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_dead_code")
	if err != nil {
		return errorResponse("analyze_dead_code", err)
	}
	report, err := s.svc.AnalyzeDeadCode(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_dead_code", err)
	}
	return jsonResponse(report)
}

func (s *Server) handleAnalyzeSATD(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_satd")
	if err != nil {
		return errorResponse("analyze_satd", err)
	}
	items, err := s.svc.AnalyzeSATD(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_satd", err)
	}
	return jsonResponse(items)
}

func (s *Server) handleAnalyzeDuplicates(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_duplicates")
	if err != nil {
		return errorResponse("analyze_duplicates", err)
	}
	groups, err := s.svc.AnalyzeDuplicates(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_duplicates", err)
	}
	return jsonResponse(groups)
}

func (s *Server) handleAnalyzeTDG(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_tdg")
	if err != nil {
		return errorResponse("analyze_tdg", err)
	}
	scores, err := s.svc.AnalyzeTDG(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_tdg", err)
	}
	return jsonResponse(scores)
}

func (s *Server) handleAnalyzeDeepContext(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := decodeAnalyzeParams(req, "analyze_deep_context")
	if err != nil {
		return errorResponse("analyze_deep_context", err)
	}
	report, err := s.svc.AnalyzeDeepContext(ctx, service.AnalyzeRequest{WorkspaceRoot: p.WorkspaceRoot})
	if err != nil {
		return errorResponse("analyze_deep_context", err)
	}
	return jsonResponse(report)
}

var errMissingID = &paramError{"id is required"}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }

func decodeAnalyzeParams(req *mcp.CallToolRequest, op string) (analyzeParams, error) {
	var p analyzeParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return p, cerrors.InvalidRequest(op, err)
	}
	if p.WorkspaceRoot == "" {
		return p, cerrors.ValidationFailed(op, "workspace_root", &paramError{"workspace_root is required"})
	}
	return p, nil
}

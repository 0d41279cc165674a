package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/service"
)

// analyzeBody is the JSON body every POST /analyze/* route accepts.
type analyzeBody struct {
	WorkspaceRoot string `json:"workspace_root"`
	HotspotLimit  int    `json:"hotspot_limit,omitempty"`
}

func decodeAnalyzeBody(r *http.Request) (analyzeBody, error) {
	var body analyzeBody
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return body, cerrors.InvalidRequest("decode_body", err)
		}
	}
	if body.WorkspaceRoot == "" {
		return body, cerrors.ValidationFailed("decode_body", "workspace_root", errMissingWorkspaceRoot)
	}
	return body, nil
}

var errMissingWorkspaceRoot = httpParamError("workspace_root is required")

type httpParamError string

func (e httpParamError) Error() string { return string(e) }

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.ListTemplates(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := s.svc.GenerateTemplate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondServiceError(w, cerrors.InvalidRequest("generate", err))
		return
	}
	tpl, err := s.svc.GenerateTemplate(r.Context(), body.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleAnalyzeComplexity(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := s.svc.AnalyzeComplexity(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot, HotspotLimit: body.HotspotLimit})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeChurn(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := s.svc.AnalyzeChurn(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeDAG(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	diagram, err := s.svc.AnalyzeDAG(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"diagram": diagram})
}

func (s *Server) handleAnalyzeDeadCode(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := s.svc.AnalyzeDeadCode(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyzeSATD(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	items, err := s.svc.AnalyzeSATD(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleAnalyzeDuplicates(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	groups, err := s.svc.AnalyzeDuplicates(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (s *Server) handleAnalyzeTDG(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	scores, err := s.svc.AnalyzeTDG(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, scores)
}

func (s *Server) handleAnalyzeDeepContext(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAnalyzeBody(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := s.svc.AnalyzeDeepContext(r.Context(), service.AnalyzeRequest{WorkspaceRoot: body.WorkspaceRoot})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

package service

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/codelens/internal/analysis"
	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/dag"
	"github.com/standardbeagle/codelens/internal/mermaid"
	"github.com/standardbeagle/codelens/internal/types"
)

// buildImportGraph walks every parsed file's import-kind nodes and
// resolves each one, best-effort, to another file in the workspace by
// checking whether the import text contains that file's base name
// (minus extension). Languages encode import targets very
// differently; this substring heuristic is deliberately
// language-agnostic rather than reimplementing each resolver, and is
// documented in DESIGN.md as a simplification of true module
// resolution.
func buildImportGraph(ws *Workspace) *dag.Graph {
	nodes := make([]types.FileID, 0, len(ws.FileRoots))
	for id := range ws.FileRoots {
		nodes = append(nodes, id)
	}

	stems := make(map[string]types.FileID, len(ws.FilePaths))
	for id, path := range ws.FilePaths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		stems[stem] = id
	}

	var edges []dag.Edge
	for fileID, root := range ws.FileRoots {
		content := ws.FileContent[fileID]
		ws.Dag.Walk(root, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
			if n.Kind != types.KindImport {
				return true
			}
			r := n.Range()
			if int(r.Hi) > len(content) {
				return true
			}
			text := string(content[r.Lo:r.Hi])
			for stem, targetID := range stems {
				if targetID != fileID && strings.Contains(text, stem) {
					edges = append(edges, dag.Edge{From: fileID, To: targetID, Kind: dag.EdgeImport})
				}
			}
			return true
		})
	}

	return dag.NewGraph(nodes, edges, nil)
}

// mermaidOptions labels every node by its workspace-relative path and
// colors it by the file's worst function cyclomatic complexity.
func mermaidOptions(ws *Workspace) mermaid.Options {
	labels := make(map[types.FileID]string, len(ws.FilePaths))
	for id, path := range ws.FilePaths {
		labels[id] = path
	}

	complexity := make(map[types.FileID]uint32, len(ws.FileRoots))
	report := analysis.AnalyzeComplexity(ws.Dag, ws.FileRoots, 0)
	for _, f := range report.Files {
		complexity[f.FileID] = f.Max
	}

	return mermaid.Options{Labels: labels, Complexity: complexity}
}

// extractComments scans every parsed file's raw content for
// line-comment markers and hands the stripped text to the SATD
// detector. A full comment-node walk belongs in each frontend's
// lowering pass; this cross-language sweep is the pragmatic stand-in
// used by the orchestrator, grounded on the same line-scanning style
// the teacher's SATD scanner uses.
func extractComments(ws *Workspace) []analysis.Comment {
	var comments []analysis.Comment
	fileIDs := make([]types.FileID, 0, len(ws.FilePaths))
	for id := range ws.FilePaths {
		fileIDs = append(fileIDs, id)
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for _, fileID := range fileIDs {
		path := ws.FilePaths[fileID]
		content := ws.FileContent[fileID]
		isTest := strings.Contains(path, "_test.") || strings.Contains(path, ".test.") || strings.Contains(path, "/test/")

		lines := strings.Split(string(content), "\n")
		for i, line := range lines {
			idx := commentMarkerIndex(line)
			if idx < 0 {
				continue
			}
			text := strings.TrimSpace(line[idx:])
			if text == "" {
				continue
			}
			comments = append(comments, analysis.Comment{
				Text:   text,
				File:   path,
				Line:   i + 1,
				Column: idx + 1,
				IsTest: isTest,
			})
		}
	}
	return comments
}

func commentMarkerIndex(line string) int {
	for _, marker := range []string{"//", "#"} {
		if idx := strings.Index(line, marker); idx >= 0 {
			return idx
		}
	}
	return -1
}

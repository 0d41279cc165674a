package service

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/config"
	"github.com/standardbeagle/codelens/internal/discovery"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/parser"
	"github.com/standardbeagle/codelens/internal/types"
)

// Workspace is a loaded project: every discovered file parsed into one
// shared AstDag, per spec.md §4.1's "one arena per workspace" design.
type Workspace struct {
	Root        string
	Dag         *ast.Dag
	FileRoots   map[types.FileID]types.NodeID
	FileContent map[types.FileID][]byte
	FilePaths   map[types.FileID]string
	Files       []discovery.File
	Diagnostics []parser.Diagnostic
}

// LoadWorkspace discovers files under root per cfg.Discovery, parses
// every recognized one into a shared Dag, and skips (rather than
// aborts on) unparseable or unsupported files, per spec.md §4.1's
// "parse error never aborts the run" invariant.
func LoadWorkspace(root string, cfg *config.Discovery, registry *parser.Registry) (*Workspace, error) {
	result, err := discovery.Walk(root, cfg)
	if err != nil {
		return nil, cerrors.IoError("load_workspace", err)
	}

	ws := &Workspace{
		Root:        root,
		Dag:         ast.NewDag(),
		FileRoots:   make(map[types.FileID]types.NodeID),
		FileContent: make(map[types.FileID][]byte),
		FilePaths:   make(map[types.FileID]string),
		Files:       result.Files,
	}

	for i, f := range result.Files {
		fileID := types.FileID(i + 1)

		content, err := os.ReadFile(f.Path)
		if err != nil {
			ws.Diagnostics = append(ws.Diagnostics, parser.Diagnostic{Message: "read failed: " + err.Error()})
			continue
		}

		frontend, ok := registry.Lookup(f.Path)
		if !ok {
			continue // no frontend for this extension; silently excluded, not an error
		}

		res, err := frontend.Parse(ws.Dag, fileID, f.Path, content)
		if err != nil {
			ws.Diagnostics = append(ws.Diagnostics, parser.Diagnostic{Message: filepath.Base(f.Path) + ": " + err.Error()})
			continue
		}

		ws.FileRoots[fileID] = res.Root
		ws.FileContent[fileID] = content
		ws.FilePaths[fileID] = f.Rel
		ws.Dag.SetFileRoot(uint32(fileID), res.Root)
		ws.Diagnostics = append(ws.Diagnostics, res.Diagnostics...)
	}

	return ws, nil
}

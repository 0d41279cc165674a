// Package parser hosts one Frontend per source language plus the
// registry that dispatches a discovered file to the right one, then
// lowers its language-specific tree-sitter tree into the Unified AST.
package parser

import (
	"strings"

	"github.com/standardbeagle/codelens/internal/ast"
	cerrors "github.com/standardbeagle/codelens/internal/errors"
	"github.com/standardbeagle/codelens/internal/types"
)

// Capabilities advertises what a Frontend supports, per spec.md §4.1.
type Capabilities struct {
	SupportsIncremental bool
	SupportsTypes       bool
}

// ParseResult is what a Frontend hands back to the registry: the root
// node already appended to the shared Dag, plus any recovered parse
// diagnostics (spec.md §4.1: a parse error yields a partial tree with
// an Error node, never an aborted run).
type ParseResult struct {
	Root        types.NodeID
	Diagnostics []Diagnostic
}

// Diagnostic records a single recovered parse failure.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

// Frontend is implemented once per source language.
type Frontend interface {
	Language() types.Language
	CanParse(path string) bool
	Capabilities() Capabilities
	// Parse lowers content into dag, appending nodes for fileID, and
	// returns the result describing the new root.
	Parse(dag *ast.Dag, fileID types.FileID, path string, content []byte) (*ParseResult, error)
}

// Registry maps a file extension to the Frontend that owns it.
type Registry struct {
	byExt     map[string]Frontend
	frontends []Frontend
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Frontend)}
}

// Register associates each of exts (lowercased, with leading dot) with f.
func (r *Registry) Register(f Frontend, exts ...string) {
	r.frontends = append(r.frontends, f)
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// Lookup returns the Frontend for path, using extension first and
// falling back to each registered frontend's own CanParse, which also
// matches on the path's suffix only (no shebang or extensionless-script
// detection).
func (r *Registry) Lookup(path string) (Frontend, bool) {
	ext := strings.ToLower(path[strings.LastIndexByte(path, '.')+1:])
	if ext != "" {
		if f, ok := r.byExt["."+ext]; ok {
			return f, true
		}
	}
	for _, f := range r.frontends {
		if f.CanParse(path) {
			return f, true
		}
	}
	return nil, false
}

// NewDefaultRegistry wires every language frontend spec.md §1 names.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewRustFrontend(), ".rs")
	r.Register(NewTypeScriptFrontend(true), ".ts", ".tsx")
	r.Register(NewTypeScriptFrontend(false), ".js", ".jsx", ".mjs", ".cjs")
	r.Register(NewPythonFrontend(), ".py", ".pyi")
	r.Register(NewCFrontend(), ".c", ".h")
	r.Register(NewCppFrontend(), ".cc", ".cpp", ".cxx", ".hpp", ".hh")
	r.Register(NewKotlinFrontend(), ".kt", ".kts")
	return r
}

// errUnsupported builds the InvalidRequest taxonomy error for a path
// no registered frontend claims.
func errUnsupported(path string) error {
	return cerrors.InvalidRequest("parser.Lookup", &unsupportedExtErr{path: path})
}

type unsupportedExtErr struct{ path string }

func (e *unsupportedExtErr) Error() string { return "unsupported file extension: " + e.path }

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

func TestRegistryLookupByExtension(t *testing.T) {
	r := NewDefaultRegistry()

	f, ok := r.Lookup("src/lib.rs")
	require.True(t, ok)
	require.Equal(t, types.LangRust, f.Language())

	f, ok = r.Lookup("src/app.tsx")
	require.True(t, ok)
	require.Equal(t, types.LangTypeScript, f.Language())

	f, ok = r.Lookup("src/app.js")
	require.True(t, ok)
	require.Equal(t, types.LangJavaScript, f.Language())

	_, ok = r.Lookup("README.md")
	require.False(t, ok)
}

func TestRustFrontendLowersFunctionWithComplexity(t *testing.T) {
	src := `
fn classify(x: i32) -> i32 {
    if x > 0 {
        if x > 100 {
            return 2;
        }
        return 1;
    } else {
        return 0;
    }
}
`
	f := NewRustFrontend()
	dag := ast.NewDag()
	res, err := f.Parse(dag, types.FileID(1), "classify.rs", []byte(src))
	require.NoError(t, err)
	require.NotEqual(t, ast.Sentinel, res.Root)

	var fnNode *ast.UnifiedAstNode
	dag.Walk(res.Root, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
		if n.Kind == types.KindFunction {
			node := *n
			fnNode = &node
			return false
		}
		return true
	})
	require.NotNil(t, fnNode)

	cyclomatic, _ := ast.UnpackComplexity(fnNode.Metadata)
	require.GreaterOrEqual(t, cyclomatic, uint32(2))
}

func TestPythonFrontendAssignsNameVector(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	f := NewPythonFrontend()
	dag := ast.NewDag()
	res, err := f.Parse(dag, types.FileID(1), "add.py", []byte(src))
	require.NoError(t, err)

	var found bool
	dag.Walk(res.Root, func(id types.NodeID, n *ast.UnifiedAstNode) bool {
		if n.Kind == types.KindFunction {
			require.NotZero(t, n.NameVector)
			found = true
		}
		return true
	})
	require.True(t, found)
}

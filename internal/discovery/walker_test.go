package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/codelens/internal/config"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkSortsAndRespectsVendorDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b\n")
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "node_modules", "x.js"), "console.log(1)")

	cfg := config.Default().Discovery
	res, err := Walk(root, &cfg)
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.Rel)
	}
	require.Equal(t, []string{"a.go", "b.go"}, rels)
}

func TestWalkHonorsGitignoreNegation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n!keep.log\n")
	writeFile(t, filepath.Join(root, "app.log"), "noise")
	writeFile(t, filepath.Join(root, "keep.log"), "noise")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")

	cfg := config.Default().Discovery
	res, err := Walk(root, &cfg)
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.Rel)
	}
	require.Contains(t, rels, "keep.log")
	require.Contains(t, rels, "main.go")
	require.NotContains(t, rels, "app.log")
}

func TestClassifySkipsHighEntropyContent(t *testing.T) {
	root := t.TempDir()
	// Pseudo-random bytes produce near-maximal entropy, unlike source text.
	// The blob stays within the first kilobyte, which the non-UTF-8 check
	// does not examine, so the entropy rule is the one that fires.
	var sb strings.Builder
	seed := uint32(12345)
	for i := 0; i < 1024; i++ {
		seed = seed*1664525 + 1013904223
		sb.WriteByte(byte(seed >> 16))
	}
	writeFile(t, filepath.Join(root, "blob.bin"), sb.String())

	cfg := config.Default().Discovery
	res, err := Walk(root, &cfg)
	require.NoError(t, err)
	require.Empty(t, res.Files)

	var found bool
	for _, ev := range res.Events {
		if ev.Path == "blob.bin" {
			found = true
			require.Equal(t, DecisionSkip, ev.Decision)
			require.Equal(t, ReasonHighEntropy, ev.Reason)
		}
	}
	require.True(t, found)
}

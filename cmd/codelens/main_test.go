package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
)

func TestExitCodeForMapsTaxonomyToSpecCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{cerrors.InvalidRequest("op", errors.New("x")), exitInvalidArgs},
		{cerrors.NotFound("op", "x"), exitNotFound},
		{cerrors.ValidationFailed("op", "param", errors.New("x")), exitValidationFailed},
		{cerrors.Timeout("op", errors.New("x")), exitTimeout},
		{cerrors.IoError("op", errors.New("x")), exitIoError},
		{cerrors.Internal("op", "id", errors.New("x")), exitGeneric},
		{errors.New("untyped"), exitGeneric},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, exitCodeFor(tc.err))
	}
}

func TestAppRegistersEveryTopLevelVerb(t *testing.T) {
	a := app()
	names := make(map[string]bool)
	for _, cmd := range a.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"list", "generate", "analyze", "context", "serve", "diagnose"} {
		require.True(t, names[want], "missing command %q", want)
	}
}

func TestAnalyzeCommandRegistersEverySubverb(t *testing.T) {
	a := app()
	for _, cmd := range a.Commands {
		if cmd.Name != "analyze" {
			continue
		}
		sub := make(map[string]bool)
		for _, s := range cmd.Subcommands {
			sub[s.Name] = true
		}
		for _, want := range []string{"complexity", "churn", "dag", "dead-code", "satd", "duplicates", "tdg"} {
			require.True(t, sub[want], "missing analyze subverb %q", want)
		}
		return
	}
	t.Fatal("analyze command not found")
}

func testContext(t *testing.T, flags map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, value := range flags {
		set.String(name, "", "")
		require.NoError(t, set.Set(name, value))
	}
	return cli.NewContext(app(), set, nil)
}

func TestWriteOutputSupportsYAMLFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.yaml")
	c := testContext(t, map[string]string{"format": "yaml", "output": out})

	require.NoError(t, writeOutput(c, map[string]string{"hello": "world"}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), "hello: world")
}

func TestWriteOutputRejectsUnsupportedFormat(t *testing.T) {
	c := testContext(t, map[string]string{"format": "sarif"})
	err := writeOutput(c, map[string]string{"hello": "world"})
	require.Error(t, err)
	ce, ok := err.(*cerrors.CodelensError)
	require.True(t, ok)
	require.Equal(t, cerrors.KindInvalidRequest, ce.Kind)
}

func TestWriteArtifactWritesReportAndManifest(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, writeArtifact(outDir, "analyze_complexity", map[string]int{"max": 10}))

	reportPath := filepath.Join(outDir, "reports", "analyze_complexity.json")
	_, err := os.Stat(reportPath)
	require.NoError(t, err)

	manifestPath := filepath.Join(outDir, "manifest.json")
	raw, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	var manifest struct {
		Artifacts []struct {
			RelativePath string `json:"relative_path"`
		} `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(raw, &manifest))
	require.Len(t, manifest.Artifacts, 1)
	require.Equal(t, "reports/analyze_complexity.json", manifest.Artifacts[0].RelativePath)
}

func TestWriteArtifactWritesMermaidForStringResult(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, writeArtifact(outDir, "analyze_dag", "graph TD; a-->b;"))

	_, err := os.Stat(filepath.Join(outDir, "mermaid", "analyze_dag.mmd"))
	require.NoError(t, err)
}

func TestDiagnoseWritesTOMLSnapshot(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, ".codelens.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[project]
root = "`+root+`"
`), 0o644))
	out := filepath.Join(root, "diagnose.json")

	err := app().RunContext(context.Background(), []string{
		"codelens", "--config", configPath, "--output", out, "diagnose",
	})
	require.NoError(t, err)

	snapshot := filepath.Join(root, ".codelens", "config.snapshot.toml")
	_, statErr := os.Stat(snapshot)
	require.NoError(t, statErr)
}

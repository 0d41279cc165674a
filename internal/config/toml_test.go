package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadTOMLMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().Analysis.PageRankDamping, cfg.Analysis.PageRankDamping)
}

func TestLoadTOMLOverlaysFieldsOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".codelens.toml")
	content := `
version = 2

[project]
name = "demo"

[discovery]
max_file_size_bytes = 1048576
respect_gitignore = false

[cache]
ttl_seconds = 3600

[analysis]
duplicate_jaccard_min = 0.9
pagerank_top_k = 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadTOML(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Version)
	require.Equal(t, "demo", cfg.Project.Name)
	require.Equal(t, int64(1048576), cfg.Discovery.MaxFileSizeBytes)
	require.False(t, cfg.Discovery.RespectGitignore)
	require.Equal(t, time.Hour, cfg.Cache.TTL)
	require.Equal(t, 0.9, cfg.Analysis.DuplicateJaccardMin)
	require.Equal(t, 50, cfg.Analysis.PageRankTopK)
	// untouched fields keep their Default() value
	require.Equal(t, Default().Analysis.PageRankDamping, cfg.Analysis.PageRankDamping)
}

func TestSnapshotTOMLRoundTripsThroughLoadTOML(t *testing.T) {
	cfg := Default()
	cfg.Project.Name = "roundtrip"
	cfg.Analysis.PageRankTopK = 77

	raw, err := SnapshotTOML(cfg)
	require.NoError(t, err)
	require.Contains(t, string(raw), "roundtrip")

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.toml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	reloaded, err := LoadTOML(path)
	require.NoError(t, err)
	require.Equal(t, "roundtrip", reloaded.Project.Name)
	require.Equal(t, 77, reloaded.Analysis.PageRankTopK)
}

func TestResolveDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "cfg.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("version = 9\n"), 0o644))

	cfg, err := Resolve(tomlPath)
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Version)

	kdlPath := filepath.Join(dir, ".codelens.kdl")
	require.NoError(t, os.WriteFile(kdlPath, []byte(`project { root "." }`), 0o644))
	cfg, err = Resolve(kdlPath)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Version)
}

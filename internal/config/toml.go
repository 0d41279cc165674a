package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors Config's shape for TOML decoding. time.Duration
// fields are expressed in seconds, matching the KDL loader's
// "_seconds" convention, so both formats round-trip through the same
// mental model.
type tomlConfig struct {
	Version   int           `toml:"version"`
	Project   tomlProject   `toml:"project"`
	Discovery tomlDiscovery `toml:"discovery"`
	Cache     tomlCache     `toml:"cache"`
	Analysis  tomlAnalysis  `toml:"analysis"`
	Include   []string      `toml:"include"`
	Exclude   []string      `toml:"exclude"`
}

type tomlProject struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type tomlDiscovery struct {
	MaxFileSizeBytes  int64    `toml:"max_file_size_bytes"`
	EntropyThreshold  float64  `toml:"entropy_threshold"`
	EntropySampleSize int      `toml:"entropy_sample_size"`
	RespectGitignore  *bool    `toml:"respect_gitignore"`
	IncludeLargeFiles bool     `toml:"include_large_files"`
	VendorDirs        []string `toml:"vendor_dirs"`
}

type tomlCache struct {
	Dir           string `toml:"dir"`
	MaxEntries    int    `toml:"max_entries"`
	MaxBytes      int64  `toml:"max_bytes"`
	TTLSeconds    int64  `toml:"ttl_seconds"`
	PersistToDisk *bool  `toml:"persist_to_disk"`
}

type tomlAnalysis struct {
	DuplicateMinGroupSize        int     `toml:"duplicate_min_group_size"`
	DuplicateShingleSize         int     `toml:"duplicate_shingle_size"`
	DuplicateJaccardMin          float64 `toml:"duplicate_jaccard_min"`
	DuplicateAggressive          *bool   `toml:"duplicate_aggressive"`
	SATDSkipTestFiles            bool    `toml:"satd_skip_test_files"`
	SATDDownweight               *bool   `toml:"satd_downweight"`
	DeadCodeAllowDynamicDispatch bool    `toml:"dead_code_allow_dynamic_dispatch"`
	PageRankDamping              float64 `toml:"pagerank_damping"`
	PageRankTolerance            float64 `toml:"pagerank_tolerance"`
	PageRankTopK                 int     `toml:"pagerank_top_k"`
	DefaultTimeoutSeconds        int64   `toml:"default_timeout_seconds"`
	DeepContextTimeoutSeconds    int64   `toml:"deep_context_timeout_seconds"`
}

// DefaultTOMLConfigFileName is the conventional name of the alternative
// TOML config file. codelens does not search for it; a config file is
// read only when its path is given via --config.
const DefaultTOMLConfigFileName = ".codelens.toml"

// Resolve loads the config file at path, picking the KDL or TOML
// parser by extension. An empty path or a path with neither extension
// falls back to the KDL loader (and, transitively, to Default() if
// that file doesn't exist either). The CLI does not call Resolve when
// --config is unset; it uses Default() directly.
func Resolve(path string) (*Config, error) {
	if filepath.Ext(path) == ".toml" {
		return LoadTOML(path)
	}
	return Load(path)
}

// LoadTOML reads a TOML config file, overlaying non-zero fields onto
// Default() the same way Load (KDL) does, so either format produces a
// fully populated Config regardless of which fields the file sets.
func LoadTOML(path string) (*Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if absRoot, werr := os.Getwd(); werr == nil {
			cfg.Project.Root = absRoot
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var tc tomlConfig
	if err := toml.Unmarshal(content, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyTOML(tc, cfg)

	if cfg.Project.Root == "" || cfg.Project.Root == "." {
		if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
			cfg.Project.Root = abs
		}
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(filepath.Dir(path), cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)

	return cfg, nil
}

// SnapshotTOML renders cfg as TOML, for the diagnose verb's
// config.snapshot.toml bug-report dump (SPEC_FULL.md §5): a
// human-diffable copy of the effective configuration independent of
// which format (KDL or TOML) it was loaded from. The Enable* analyzer
// switches, DuplicateSemanticMode and Concurrency are not included.
func SnapshotTOML(cfg *Config) ([]byte, error) {
	return toml.Marshal(toTOMLConfig(cfg))
}

func toTOMLConfig(cfg *Config) tomlConfig {
	respectGitignore := cfg.Discovery.RespectGitignore
	persistToDisk := cfg.Cache.PersistToDisk
	duplicateAggressive := cfg.Analysis.DuplicateAggressive
	satdDownweight := cfg.Analysis.SATDDownweight

	return tomlConfig{
		Version: cfg.Version,
		Project: tomlProject{Root: cfg.Project.Root, Name: cfg.Project.Name},
		Discovery: tomlDiscovery{
			MaxFileSizeBytes:  cfg.Discovery.MaxFileSizeBytes,
			EntropyThreshold:  cfg.Discovery.EntropyThreshold,
			EntropySampleSize: cfg.Discovery.EntropySampleSize,
			RespectGitignore:  &respectGitignore,
			IncludeLargeFiles: cfg.Discovery.IncludeLargeFiles,
			VendorDirs:        cfg.Discovery.VendorDirs,
		},
		Cache: tomlCache{
			Dir:           cfg.Cache.Dir,
			MaxEntries:    cfg.Cache.MaxEntries,
			MaxBytes:      cfg.Cache.MaxBytes,
			TTLSeconds:    int64(cfg.Cache.TTL.Seconds()),
			PersistToDisk: &persistToDisk,
		},
		Analysis: tomlAnalysis{
			DuplicateMinGroupSize:        cfg.Analysis.DuplicateMinGroupSize,
			DuplicateShingleSize:         cfg.Analysis.DuplicateShingleSize,
			DuplicateJaccardMin:          cfg.Analysis.DuplicateJaccardMin,
			DuplicateAggressive:          &duplicateAggressive,
			SATDSkipTestFiles:            cfg.Analysis.SATDSkipTestFiles,
			SATDDownweight:               &satdDownweight,
			DeadCodeAllowDynamicDispatch: cfg.Analysis.DeadCodeAllowDynamicDispatch,
			PageRankDamping:              cfg.Analysis.PageRankDamping,
			PageRankTolerance:            cfg.Analysis.PageRankTolerance,
			PageRankTopK:                 cfg.Analysis.PageRankTopK,
			DefaultTimeoutSeconds:        int64(cfg.Analysis.DefaultTimeout.Seconds()),
			DeepContextTimeoutSeconds:    int64(cfg.Analysis.DeepContextTimeout.Seconds()),
		},
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
}

func applyTOML(tc tomlConfig, cfg *Config) {
	if tc.Version != 0 {
		cfg.Version = tc.Version
	}
	if tc.Project.Root != "" {
		cfg.Project.Root = tc.Project.Root
	}
	if tc.Project.Name != "" {
		cfg.Project.Name = tc.Project.Name
	}

	if tc.Discovery.MaxFileSizeBytes != 0 {
		cfg.Discovery.MaxFileSizeBytes = tc.Discovery.MaxFileSizeBytes
	}
	if tc.Discovery.EntropyThreshold != 0 {
		cfg.Discovery.EntropyThreshold = tc.Discovery.EntropyThreshold
	}
	if tc.Discovery.EntropySampleSize != 0 {
		cfg.Discovery.EntropySampleSize = tc.Discovery.EntropySampleSize
	}
	if tc.Discovery.RespectGitignore != nil {
		cfg.Discovery.RespectGitignore = *tc.Discovery.RespectGitignore
	}
	cfg.Discovery.IncludeLargeFiles = tc.Discovery.IncludeLargeFiles
	if len(tc.Discovery.VendorDirs) > 0 {
		cfg.Discovery.VendorDirs = tc.Discovery.VendorDirs
	}

	if tc.Cache.Dir != "" {
		cfg.Cache.Dir = tc.Cache.Dir
	}
	if tc.Cache.MaxEntries != 0 {
		cfg.Cache.MaxEntries = tc.Cache.MaxEntries
	}
	if tc.Cache.MaxBytes != 0 {
		cfg.Cache.MaxBytes = tc.Cache.MaxBytes
	}
	if tc.Cache.TTLSeconds != 0 {
		cfg.Cache.TTL = time.Duration(tc.Cache.TTLSeconds) * time.Second
	}
	if tc.Cache.PersistToDisk != nil {
		cfg.Cache.PersistToDisk = *tc.Cache.PersistToDisk
	}

	a := tc.Analysis
	if a.DuplicateMinGroupSize != 0 {
		cfg.Analysis.DuplicateMinGroupSize = a.DuplicateMinGroupSize
	}
	if a.DuplicateShingleSize != 0 {
		cfg.Analysis.DuplicateShingleSize = a.DuplicateShingleSize
	}
	if a.DuplicateJaccardMin != 0 {
		cfg.Analysis.DuplicateJaccardMin = a.DuplicateJaccardMin
	}
	if a.DuplicateAggressive != nil {
		cfg.Analysis.DuplicateAggressive = *a.DuplicateAggressive
	}
	cfg.Analysis.SATDSkipTestFiles = a.SATDSkipTestFiles
	if a.SATDDownweight != nil {
		cfg.Analysis.SATDDownweight = *a.SATDDownweight
	}
	cfg.Analysis.DeadCodeAllowDynamicDispatch = a.DeadCodeAllowDynamicDispatch
	if a.PageRankDamping != 0 {
		cfg.Analysis.PageRankDamping = a.PageRankDamping
	}
	if a.PageRankTolerance != 0 {
		cfg.Analysis.PageRankTolerance = a.PageRankTolerance
	}
	if a.PageRankTopK != 0 {
		cfg.Analysis.PageRankTopK = a.PageRankTopK
	}
	if a.DefaultTimeoutSeconds != 0 {
		cfg.Analysis.DefaultTimeout = time.Duration(a.DefaultTimeoutSeconds) * time.Second
	}
	if a.DeepContextTimeoutSeconds != 0 {
		cfg.Analysis.DeepContextTimeout = time.Duration(a.DeepContextTimeoutSeconds) * time.Second
	}

	if len(tc.Include) > 0 {
		cfg.Include = tc.Include
	}
	if len(tc.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, tc.Exclude...)
	}
}

// Package config holds the codelens configuration tree and its
// defaults, loaded from a KDL or TOML file (see Resolve).
package config

import "time"

// Config is the root configuration struct-of-structs, mirroring the
// teacher's Project/Index/Performance/Search layout.
type Config struct {
	Version     int
	Project     Project
	Discovery   Discovery
	Cache       Cache
	Analysis    Analysis
	Concurrency Concurrency
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

// Discovery configures file walking and classification (spec.md §4.2).
type Discovery struct {
	MaxFileSizeBytes  int64   // SKIP when file size exceeds this
	EntropyThreshold  float64 // Shannon entropy, bits/byte, above which a file is SKIP
	EntropySampleSize int     // bytes sampled from file head for entropy check
	RespectGitignore  bool
	IncludeLargeFiles bool // opt-in flag to include files above MaxFileSizeBytes
	VendorDirs        []string
}

// Cache configures the multi-layer cache (spec.md §4.3).
type Cache struct {
	Dir            string
	MaxEntries     int
	MaxBytes       int64
	TTL            time.Duration
	PersistToDisk  bool
}

// Analysis configures which analyzers run and their thresholds.
type Analysis struct {
	EnableComplexity  bool
	EnableChurn       bool
	EnableDuplicates  bool
	EnableDeadCode    bool
	EnableSATD        bool
	EnableDAG         bool

	DuplicateMinGroupSize int
	DuplicateShingleSize  int
	DuplicateJaccardMin   float64
	DuplicateAggressive   bool // normalize identifiers to VAR_i
	DuplicateSemanticMode bool // parsed and stored only; no analyzer reads it, so no Type-4 detection runs

	SATDSkipTestFiles bool
	SATDDownweight    bool

	DeadCodeAllowDynamicDispatch bool

	PageRankDamping   float64
	PageRankTolerance float64
	PageRankTopK      int

	DefaultTimeout     time.Duration
	DeepContextTimeout time.Duration
}

// Concurrency configures the worker pool and cooperative I/O budget
// (spec.md §5).
type Concurrency struct {
	Workers int // 0 = auto-detect (NumCPU)
}

// Default returns a Config populated with the documented defaults for
// every field, matching the teacher's parseKDL default-population style.
func Default() *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: "."},
		Discovery: Discovery{
			MaxFileSizeBytes:  2 * 1024 * 1024,
			EntropyThreshold:  7.8,
			EntropySampleSize: 4096,
			RespectGitignore:  true,
			IncludeLargeFiles: false,
			VendorDirs:        []string{"node_modules", "target", "vendor", "dist", "build", ".git"},
		},
		Cache: Cache{
			Dir:           ".codelens/cache",
			MaxEntries:    10000,
			MaxBytes:      256 * 1024 * 1024,
			TTL:           24 * time.Hour,
			PersistToDisk: true,
		},
		Analysis: Analysis{
			EnableComplexity:      true,
			EnableChurn:           true,
			EnableDuplicates:      true,
			EnableDeadCode:        true,
			EnableSATD:            true,
			EnableDAG:             true,
			DuplicateMinGroupSize: 2,
			DuplicateShingleSize:  5,
			DuplicateJaccardMin:   0.8,
			DuplicateAggressive:   true,
			DuplicateSemanticMode: false,
			SATDSkipTestFiles:     false,
			SATDDownweight:        true,
			PageRankDamping:       0.85,
			PageRankTolerance:     1e-6,
			PageRankTopK:          200,
			DefaultTimeout:        30 * time.Second,
			DeepContextTimeout:    5 * time.Minute,
		},
		Concurrency: Concurrency{Workers: 0},
		Include:     []string{},
		Exclude:     []string{},
	}
}

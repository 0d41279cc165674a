package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// DefaultConfigFileName is the conventional KDL config file name, same
// convention as the teacher's ".lci.kdl". codelens does not search for
// it (a config file is read only when given via --config); it names
// the file in parse errors.
const DefaultConfigFileName = ".codelens.kdl"

// Load reads and parses a KDL config file at path. A missing file is
// not an error: Load returns Default() so callers always get a usable
// config, matching the teacher's LoadKDL "no config found" behavior.
func Load(path string) (*Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		absRoot, _ := os.Getwd()
		if absRoot != "" {
			cfg.Project.Root = absRoot
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, err
	}

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

func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", DefaultConfigFileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "discovery":
			parseDiscoverySection(n, cfg)
		case "cache":
			parseCacheSection(n, cfg)
		case "analysis":
			parseAnalysisSection(n, cfg)
		case "concurrency":
			for _, cn := range n.Children {
				if nodeName(cn) == "workers" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Concurrency.Workers = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}
	return nil
}

func parseDiscoverySection(n *document.Node, cfg *Config) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Discovery.MaxFileSizeBytes = sz
				}
			} else if v, ok := firstIntArg(cn); ok {
				cfg.Discovery.MaxFileSizeBytes = int64(v)
			}
		case "entropy_threshold":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Discovery.EntropyThreshold = v
			}
		case "entropy_sample_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Discovery.EntropySampleSize = v
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Discovery.RespectGitignore = b
			}
		case "include_large_files":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Discovery.IncludeLargeFiles = b
			}
		case "vendor_dirs":
			if args := collectStringArgs(cn); len(args) > 0 {
				cfg.Discovery.VendorDirs = args
			}
		}
	}
}

func parseCacheSection(n *document.Node, cfg *Config) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "dir":
			if s, ok := firstStringArg(cn); ok {
				cfg.Cache.Dir = s
			}
		case "max_entries":
			if v, ok := firstIntArg(cn); ok {
				cfg.Cache.MaxEntries = v
			}
		case "max_bytes":
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Cache.MaxBytes = sz
				}
			}
		case "ttl_seconds":
			if v, ok := firstIntArg(cn); ok {
				cfg.Cache.TTL = time.Duration(v) * time.Second
			}
		case "persist_to_disk":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Cache.PersistToDisk = b
			}
		}
	}
}

func parseAnalysisSection(n *document.Node, cfg *Config) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enable_complexity":
			assignBool(cn, &cfg.Analysis.EnableComplexity)
		case "enable_churn":
			assignBool(cn, &cfg.Analysis.EnableChurn)
		case "enable_duplicates":
			assignBool(cn, &cfg.Analysis.EnableDuplicates)
		case "enable_dead_code":
			assignBool(cn, &cfg.Analysis.EnableDeadCode)
		case "enable_satd":
			assignBool(cn, &cfg.Analysis.EnableSATD)
		case "enable_dag":
			assignBool(cn, &cfg.Analysis.EnableDAG)
		case "duplicate_min_group_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.DuplicateMinGroupSize = v
			}
		case "duplicate_shingle_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.DuplicateShingleSize = v
			}
		case "duplicate_jaccard_min":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Analysis.DuplicateJaccardMin = v
			}
		case "duplicate_aggressive":
			assignBool(cn, &cfg.Analysis.DuplicateAggressive)
		case "duplicate_semantic_mode":
			assignBool(cn, &cfg.Analysis.DuplicateSemanticMode)
		case "satd_skip_test_files":
			assignBool(cn, &cfg.Analysis.SATDSkipTestFiles)
		case "satd_downweight":
			assignBool(cn, &cfg.Analysis.SATDDownweight)
		case "dead_code_allow_dynamic_dispatch":
			assignBool(cn, &cfg.Analysis.DeadCodeAllowDynamicDispatch)
		case "pagerank_damping":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Analysis.PageRankDamping = v
			}
		case "pagerank_tolerance":
			if v, ok := firstFloatArg(cn); ok {
				cfg.Analysis.PageRankTolerance = v
			}
		case "pagerank_top_k":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.PageRankTopK = v
			}
		case "default_timeout_seconds":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.DefaultTimeout = time.Duration(v) * time.Second
			}
		case "deep_context_timeout_seconds":
			if v, ok := firstIntArg(cn); ok {
				cfg.Analysis.DeepContextTimeout = time.Duration(v) * time.Second
			}
		}
	}
}

func assignBool(n *document.Node, target *bool) {
	if b, ok := firstBoolArg(n); ok {
		*target = b
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// parseSize parses sizes like "10MB", "500KB", or a bare byte count.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}

package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/codelens/internal/config"
)

// File is one discovered, INCLUDE-classified source file.
type File struct {
	Path string // absolute path
	Rel  string // path relative to the workspace root, slash-separated
	Size int64
}

// Result is the outcome of one Walk call: the ordered include list
// plus every classifier event, INCLUDE and SKIP, for audit tooling.
type Result struct {
	Files  []File
	Events []Event
}

// Walk discovers files under root honoring nested .gitignore files and
// the configured vendor/size/entropy rules. The returned file list is
// sorted by byte-wise path comparison, per spec.md §4.2.
func Walk(root string, cfg *config.Discovery) (*Result, error) {
	res := &Result{}
	chain := newIgnoreChain(root)

	var walk func(dir string, chain *ignoreChain) error
	walk = func(dir string, chain *ignoreChain) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil // unreadable dir: skip silently, matches best-effort discovery
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		localChain := chain.descend(dir)

		for _, entry := range entries {
			abs := filepath.Join(dir, entry.Name())
			rel, _ := filepath.Rel(root, abs)
			rel = filepath.ToSlash(rel)

			if entry.IsDir() {
				if isVendorDir(entry.Name(), cfg.VendorDirs) {
					res.Events = append(res.Events, Event{Path: rel, Decision: DecisionSkip, Reason: ReasonVendored})
					continue
				}
				if cfg.RespectGitignore && localChain.isIgnored(abs, true) {
					continue
				}
				if err := walk(abs, localChain); err != nil {
					return err
				}
				continue
			}

			if cfg.RespectGitignore && localChain.isIgnored(abs, false) {
				continue
			}

			decision, reason, size := classifyFile(abs, cfg)
			res.Events = append(res.Events, Event{Path: rel, Decision: decision, Reason: reason})
			if decision == DecisionInclude {
				res.Files = append(res.Files, File{Path: abs, Rel: rel, Size: size})
			}
		}
		return nil
	}

	if err := walk(root, chain); err != nil {
		return nil, err
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Rel < res.Files[j].Rel })
	return res, nil
}

func isVendorDir(name string, vendorDirs []string) bool {
	for _, v := range vendorDirs {
		if name == v {
			return true
		}
	}
	return false
}

func classifyFile(path string, cfg *config.Discovery) (Decision, SkipReason, int64) {
	info, err := os.Stat(path)
	if err != nil {
		return DecisionSkip, ReasonNonUTF8, 0
	}
	size := info.Size()

	if size > cfg.MaxFileSizeBytes && !cfg.IncludeLargeFiles {
		return DecisionSkip, ReasonTooLarge, size
	}

	sampleSize := cfg.EntropySampleSize
	if sampleSize <= 0 {
		sampleSize = 4096
	}
	f, err := os.Open(path)
	if err != nil {
		return DecisionSkip, ReasonNonUTF8, size
	}
	defer f.Close()

	buf := make([]byte, sampleSize)
	n, _ := f.Read(buf)
	sample := buf[:n]

	if looksNonUTF8(sample) {
		return DecisionSkip, ReasonNonUTF8, size
	}
	if entropy := shannonEntropy(sample); entropy > cfg.EntropyThreshold {
		return DecisionSkip, ReasonHighEntropy, size
	}
	return DecisionInclude, ReasonNone, size
}

// Extension returns the lowercased extension including the leading dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

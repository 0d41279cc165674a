package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignorePattern is one line of a .gitignore file, grounded on the
// teacher's GitignoreParser: later rules override earlier ones and a
// leading "!" re-includes a path an earlier rule excluded.
type ignorePattern struct {
	glob      string
	negate    bool
	directory bool
	anchored  bool // pattern contained a "/" before the last segment
}

// ignoreSet holds patterns loaded from one .gitignore, scoped to the
// directory it was found in.
type ignoreSet struct {
	dir      string
	patterns []ignorePattern
}

func loadIgnoreFile(dir string) (*ignoreSet, bool) {
	path := filepath.Join(dir, ".gitignore")
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	set := &ignoreSet{dir: dir}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		p := ignorePattern{glob: trimmed}
		if strings.HasPrefix(p.glob, "!") {
			p.negate = true
			p.glob = p.glob[1:]
		}
		if strings.HasSuffix(p.glob, "/") {
			p.directory = true
			p.glob = strings.TrimSuffix(p.glob, "/")
		}
		if strings.Contains(strings.TrimPrefix(p.glob, "/"), "/") {
			p.anchored = true
		}
		p.glob = strings.TrimPrefix(p.glob, "/")
		if !strings.Contains(p.glob, "/") && !p.anchored {
			p.glob = "**/" + p.glob
		}
		set.patterns = append(set.patterns, p)
	}
	if len(set.patterns) == 0 {
		return nil, false
	}
	return set, true
}

// matches reports the last matching pattern's verdict: later patterns
// in the file override earlier ones, and a negated match re-includes.
func (s *ignoreSet) matches(relPath string, isDir bool) (ignored bool, matched bool) {
	for _, p := range s.patterns {
		if p.directory && !isDir {
			// directory-only patterns can still match a path prefix.
			if !strings.Contains(relPath, "/") {
				continue
			}
		}
		ok, _ := doublestar.Match(p.glob, relPath)
		if !ok && !strings.Contains(p.glob, "/") {
			ok, _ = doublestar.Match(p.glob, filepath.Base(relPath))
		}
		if ok {
			ignored = !p.negate
			matched = true
		}
	}
	return ignored, matched
}

// ignoreChain evaluates nested .gitignore files root-to-leaf, the
// later (deeper) file's rules taking precedence, per gitignore
// semantics.
type ignoreChain struct {
	root string
	sets []*ignoreSet
}

func newIgnoreChain(root string) *ignoreChain {
	chain := &ignoreChain{root: root}
	if set, ok := loadIgnoreFile(root); ok {
		chain.sets = append(chain.sets, set)
	}
	return chain
}

func (c *ignoreChain) descend(dir string) *ignoreChain {
	set, ok := loadIgnoreFile(dir)
	if !ok {
		return c
	}
	next := &ignoreChain{root: c.root, sets: append(append([]*ignoreSet{}, c.sets...), set)}
	return next
}

func (c *ignoreChain) isIgnored(absPath string, isDir bool) bool {
	ignored := false
	for _, set := range c.sets {
		rel, err := filepath.Rel(set.dir, absPath)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if v, matched := set.matches(rel, isDir); matched {
			ignored = v
		}
	}
	return ignored
}

// Package gitutil wraps git subprocess calls for churn analysis,
// grounded on the teacher's internal/git/provider.go.
package gitutil

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
)

// Provider resolves a repository root once and runs every subsequent
// git command relative to it.
type Provider struct {
	repoRoot string
}

func NewProvider(ctx context.Context, root string) (*Provider, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, cerrors.InvalidRequest("gitutil.NewProvider", err)
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = absRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, cerrors.IoError("gitutil.NewProvider", err)
	}
	return &Provider{repoRoot: strings.TrimSpace(string(out))}, nil
}

func (p *Provider) RepoRoot() string { return p.repoRoot }

// FileLogEntry is one commit that touched a file.
type FileLogEntry struct {
	CommitHash string
	Author     string
	Insertions int
	Deletions  int
	Timestamp  int64
}

// FileHistory runs `git log --follow --numstat` for a single path and
// parses the numstat lines into FileLogEntry records, one per commit.
func (p *Provider) FileHistory(ctx context.Context, relPath string) ([]FileLogEntry, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--follow",
		"--format=%H%x09%an%x09%at", "--numstat", "--", relPath)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, cerrors.IoError("gitutil.FileHistory", err)
	}
	return parseFollowNumstat(out)
}

// parseFollowNumstat walks alternating commit-header / numstat-line
// blocks: a header line "<hash>\t<author>\t<unixtime>" followed by
// zero or more "<ins>\t<del>\t<path>" numstat lines for that commit.
func parseFollowNumstat(out []byte) ([]FileLogEntry, error) {
	var entries []FileLogEntry
	var current *FileLogEntry

	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch len(fields) {
		case 3:
			if isCommitHeader(fields[0]) {
				if current != nil {
					entries = append(entries, *current)
				}
				ts, _ := strconv.ParseInt(fields[2], 10, 64)
				current = &FileLogEntry{CommitHash: fields[0], Author: fields[1], Timestamp: ts}
				continue
			}
			// numstat line: ins, del, path
			if current == nil {
				continue
			}
			ins, _ := strconv.Atoi(fields[0])
			del, _ := strconv.Atoi(fields[1])
			current.Insertions += ins
			current.Deletions += del
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries, nil
}

func isCommitHeader(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

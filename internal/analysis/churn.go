// Package analysis implements the per-report analyzers of spec.md §4.4-§4.8:
// complexity, duplicate detection, dead code, SATD, churn, and TDG fusion.
package analysis

import (
	"context"
	"sort"

	"github.com/standardbeagle/codelens/internal/gitutil"
)

// ChurnRecord is one file's aggregated commit history, per spec.md §3.
type ChurnRecord struct {
	FilePath     string
	CommitCount  int
	AuthorCount  int
	Insertions   int
	Deletions    int
	LastModified int64
	Score        float64
}

// ChurnReport is the ordered, scored result of churn analysis.
type ChurnReport struct {
	Records []ChurnRecord
}

// AnalyzeChurn runs git log per file and aggregates into a ChurnReport,
// scored by a normalized blend of commit frequency and change
// magnitude (spec.md §3). Per-file failures (e.g. file never
// committed) are skipped rather than failing the whole report, matching
// the parse-error-never-aborts-the-run policy of spec.md §4.1.
func AnalyzeChurn(ctx context.Context, provider *gitutil.Provider, relPaths []string) (*ChurnReport, error) {
	records := make([]ChurnRecord, 0, len(relPaths))
	maxCommits, maxChange := 1, 1

	for _, rel := range relPaths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entries, err := provider.FileHistory(ctx, rel)
		if err != nil || len(entries) == 0 {
			continue
		}

		authors := make(map[string]struct{})
		var ins, del int
		var last int64
		for _, e := range entries {
			authors[e.Author] = struct{}{}
			ins += e.Insertions
			del += e.Deletions
			if e.Timestamp > last {
				last = e.Timestamp
			}
		}
		rec := ChurnRecord{
			FilePath:     rel,
			CommitCount:  len(entries),
			AuthorCount:  len(authors),
			Insertions:   ins,
			Deletions:    del,
			LastModified: last,
		}
		records = append(records, rec)
		if rec.CommitCount > maxCommits {
			maxCommits = rec.CommitCount
		}
		if change := ins + del; change > maxChange {
			maxChange = change
		}
	}

	for i := range records {
		freqNorm := float64(records[i].CommitCount) / float64(maxCommits)
		changeNorm := float64(records[i].Insertions+records[i].Deletions) / float64(maxChange)
		records[i].Score = 0.5*freqNorm + 0.5*changeNorm
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].FilePath < records[j].FilePath
	})

	return &ChurnReport{Records: records}, nil
}

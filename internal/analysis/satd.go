package analysis

import (
	"strings"

	"github.com/standardbeagle/codelens/internal/types"
)

// satdPattern pairs a marker with its base category and severity weight.
type satdPattern struct {
	marker   string
	category types.SATDCategory
	weight   types.Severity
}

// satdPatterns implements spec.md §4.7's marker set. Order matters:
// DetectSATD reports only the first pattern in this list that occurs
// in a comment, so a comment holding both "hack" and "todo" is
// reported as "hack".
var satdPatterns = []satdPattern{
	{"kludge", types.SATDImplementation, types.SeverityMedium},
	{"refactor", types.SATDDesign, types.SeverityLow},
	{"xxx", types.SATDDefect, types.SeverityMedium},
	{"hack", types.SATDImplementation, types.SeverityMedium},
	{"fixme", types.SATDDefect, types.SeverityHigh},
	{"bug", types.SATDDefect, types.SeverityHigh},
	{"todo", types.SATDRequirement, types.SeverityLow},
}

var severityEscalators = []string{"security", "crash", "data loss", "vulnerability", "corrupt"}
var severityReducers = []string{"someday", "nice to have", "minor", "cosmetic"}

// SATDItem is one detected marker (spec.md §3).
type SATDItem struct {
	File        string
	Line        int
	Column      int
	Category    types.SATDCategory
	Severity    types.Severity
	Pattern     string
	ContextHash uint64
}

// Comment is the minimal shape the SATD detector needs from a parsed
// comment: its text, position, and whether the enclosing file is a
// test file (path-based) or the node itself carries FlagTest.
type Comment struct {
	Text     string
	File     string
	Line     int
	Column   int
	IsTest   bool
	NodeHash uint64 // nearby AST node's structural_hash, used as ContextHash seed
}

// DetectSATD scans comments for markers and classifies each hit.
// skipTestFiles and downweightTestFiles implement spec.md §4.7's
// "skipped or down-weighted by config" policy; they are mutually
// exclusive switches the caller sets from config.Analysis.
func DetectSATD(comments []Comment, skipTestFiles, downweightTestFiles bool) []SATDItem {
	var items []SATDItem
	for _, c := range comments {
		if c.IsTest && skipTestFiles {
			continue
		}
		lower := strings.ToLower(c.Text)
		for _, p := range satdPatterns {
			idx := strings.Index(lower, p.marker)
			if idx < 0 {
				continue
			}
			severity, category := escalate(p.weight, p.category, lower)
			if c.IsTest && downweightTestFiles {
				severity = reduceSeverity(severity)
			}
			items = append(items, SATDItem{
				File:        c.File,
				Line:        c.Line,
				Column:      c.Column + idx,
				Category:    category,
				Severity:    severity,
				Pattern:     p.marker,
				ContextHash: c.NodeHash,
			})
			break // one marker per comment, the first one found
		}
	}
	return items
}

// escalate applies severity escalators (bumping two levels, e.g. Low
// to High, matching spec.md's security-marker example) and reducers,
// and lets a security-flavored escalator pull the category toward
// Defect regardless of the base marker, since "TODO(security): ..."
// reads as an acknowledged defect risk, not a plain requirement note.
func escalate(base types.Severity, category types.SATDCategory, lowerText string) (types.Severity, types.SATDCategory) {
	for _, kw := range severityEscalators {
		if strings.Contains(lowerText, kw) {
			return bumpSeverity(base, 2), types.SATDDefect
		}
	}
	for _, kw := range severityReducers {
		if strings.Contains(lowerText, kw) {
			return reduceSeverity(base), category
		}
	}
	return base, category
}

func reduceSeverity(s types.Severity) types.Severity {
	if s == types.SeverityLow {
		return types.SeverityLow
	}
	return s - 1
}

func bumpSeverity(s types.Severity, levels int) types.Severity {
	v := int(s) + levels
	if v > int(types.SeverityCritical) {
		v = int(types.SeverityCritical)
	}
	return types.Severity(v)
}

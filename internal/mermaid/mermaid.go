// Package mermaid emits deterministic Mermaid diagrams from a
// dependency graph, per spec.md §4.9.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/codelens/internal/dag"
	"github.com/standardbeagle/codelens/internal/types"
)

// Options controls diagram emission.
type Options struct {
	Direction string // "TD", "LR", etc; defaults to "TD"
	Labels    map[types.FileID]string
	Complexity map[types.FileID]uint32 // drives bucket styling
}

// complexityBucket maps a raw cyclomatic sum to a fixed style class,
// matching spec.md §4.9's "complexity styling maps bucket -> fixed
// color class; ties broken deterministically."
func complexityBucket(c uint32) string {
	switch {
	case c == 0:
		return "cxLow"
	case c <= 10:
		return "cxMedium"
	case c <= 30:
		return "cxHigh"
	default:
		return "cxCritical"
	}
}

var styleClasses = map[string]string{
	"cxLow":      "fill:#d4edda,stroke:#28a745",
	"cxMedium":   "fill:#fff3cd,stroke:#ffc107",
	"cxHigh":     "fill:#f8d7da,stroke:#dc3545",
	"cxCritical": "fill:#f5c6cb,stroke:#721c24,stroke-width:2px",
}

// sanitizeID replaces any non-alphanumeric/underscore rune with '_'.
func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// escapeLabel applies spec.md §4.9's escaping rules.
func escapeLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '|':
			b.WriteString(`\|`)
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString(`""`)
		case '\n':
			b.WriteString("<br/>")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render is a total function of (graph, options): deterministic node
// and edge ordering, collision-resolved sanitized IDs, escaped labels,
// and an internal syntax check before returning.
func Render(g *dag.Graph, opts Options) (string, error) {
	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}

	type nodeEntry struct {
		file types.FileID
		id   string
		label string
	}

	sortedFiles := make([]types.FileID, len(g.Nodes))
	copy(sortedFiles, g.Nodes)
	sort.Slice(sortedFiles, func(i, j int) bool { return sortedFiles[i] < sortedFiles[j] })

	used := make(map[string]int)
	entries := make([]nodeEntry, 0, len(sortedFiles))
	idByFile := make(map[types.FileID]string, len(sortedFiles))
	for _, f := range sortedFiles {
		label := opts.Labels[f]
		if label == "" {
			label = fmt.Sprintf("file_%d", f)
		}
		base := sanitizeID(label)
		id := base
		if n, seen := used[base]; seen {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		used[base]++
		idByFile[f] = id
		entries = append(entries, nodeEntry{file: f, id: id, label: escapeLabel(label)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	type edgeEntry struct {
		from, to, kind string
	}
	edgeEntries := make([]edgeEntry, 0, len(g.Edges))
	for _, e := range g.Edges {
		fromID, fOK := idByFile[e.From]
		toID, tOK := idByFile[e.To]
		if !fOK || !tOK {
			continue
		}
		edgeEntries = append(edgeEntries, edgeEntry{from: fromID, to: toID, kind: edgeKindLabel(e.Kind)})
	}
	sort.Slice(edgeEntries, func(i, j int) bool {
		if edgeEntries[i].from != edgeEntries[j].from {
			return edgeEntries[i].from < edgeEntries[j].from
		}
		if edgeEntries[i].to != edgeEntries[j].to {
			return edgeEntries[i].to < edgeEntries[j].to
		}
		return edgeEntries[i].kind < edgeEntries[j].kind
	})

	var b strings.Builder
	fmt.Fprintf(&b, "graph %s\n", direction)
	for _, n := range entries {
		if n.label == "" {
			return "", fmt.Errorf("mermaid: empty label for node %s", n.id)
		}
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", n.id, n.label)
	}
	for _, e := range edgeEntries {
		if e.kind != "" {
			fmt.Fprintf(&b, "  %s -->|%s| %s\n", e.from, e.kind, e.to)
		} else {
			fmt.Fprintf(&b, "  %s --> %s\n", e.from, e.to)
		}
	}

	usedClasses := make(map[string]bool)
	for _, n := range entries {
		if opts.Complexity == nil {
			continue
		}
		bucket := complexityBucket(opts.Complexity[n.file])
		fmt.Fprintf(&b, "  class %s %s\n", n.id, bucket)
		usedClasses[bucket] = true
	}
	classNames := make([]string, 0, len(usedClasses))
	for c := range usedClasses {
		classNames = append(classNames, c)
	}
	sort.Strings(classNames)
	for _, c := range classNames {
		fmt.Fprintf(&b, "  classDef %s %s\n", c, styleClasses[c])
	}

	out := b.String()
	if err := Validate(out); err != nil {
		return "", err
	}
	return out, nil
}

func edgeKindLabel(k dag.EdgeKind) string {
	switch k {
	case dag.EdgeImport:
		return "imports"
	case dag.EdgeCall:
		return "calls"
	case dag.EdgeInheritance:
		return "extends"
	case dag.EdgeImplementation:
		return "implements"
	case dag.EdgeTypeUsage:
		return "uses"
	default:
		return ""
	}
}

// Validate is the "internal syntax check" spec.md §4.9 requires before
// a diagram is returned: it checks that the diagram starts with a
// graph directive and that no node label is empty. It does not scan
// labels for unescaped pipe/angle-bracket/quote characters; Render
// relies on escapeLabel for those.
func Validate(diagram string) error {
	lines := strings.Split(diagram, "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "graph ") {
		return fmt.Errorf("mermaid: diagram must begin with a graph directive")
	}
	for _, line := range lines {
		if idx := strings.Index(line, `[""]`); idx >= 0 {
			return fmt.Errorf("mermaid: empty node label at %q", line)
		}
	}
	return nil
}

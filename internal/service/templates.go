package service

import "github.com/hbollon/go-edlib"

// Template is a minimal scaffold descriptor. The generator and
// rendering engine behind it are out of scope (spec.md's Non-goals);
// codelens only exposes a stable catalog, and GenerateTemplate returns
// the catalog entry without invoking any generation engine.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var builtinTemplates = []Template{
	{ID: "go-service", Name: "Go Service", Description: "Minimal Go service skeleton"},
	{ID: "go-cli", Name: "Go CLI", Description: "urfave/cli-based command-line skeleton"},
	{ID: "rust-crate", Name: "Rust Crate", Description: "Minimal Rust library crate"},
}

// ListTemplates returns the fixed catalog, in a stable order so CLI,
// JSON-RPC, and HTTP adapters agree on the id set (spec.md §8
// scenario 6).
func ListTemplates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// FindTemplate looks up a template by id.
func FindTemplate(id string) (Template, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// SuggestTemplate finds the catalog id closest to a misspelled one, by
// Levenshtein distance, for use in a NotFound error's hint.
func SuggestTemplate(id string) (string, bool) {
	best := ""
	bestDistance := 1000
	for _, t := range builtinTemplates {
		distance := edlib.LevenshteinDistance(id, t.ID)
		if distance < bestDistance {
			bestDistance = distance
			best = t.ID
		}
	}
	if best == "" || bestDistance > len(best) {
		return "", false
	}
	return best, true
}

package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/codelens/internal/ast"
	"github.com/standardbeagle/codelens/internal/types"
)

const (
	minHashPermutations = 128
	lshBands            = 20
	lshRows             = 6 // bands * rows (120) must not exceed minHashPermutations
	defaultShingleSize  = 5
)

// CloneFragment is one candidate unit of duplicated code (spec.md §3).
type CloneFragment struct {
	FileID     types.FileID
	RootNode   types.NodeID
	Range      types.SourceRange
	TokenCount int
	Signature  [minHashPermutations]uint64
	Semantic   uint64 // node.SemanticHash, exact-match fast path for Type-1
	Structural uint64 // node.StructuralHash, shape match classifies a group as Type-2
}

// CloneGroup is a connected component of similar fragments.
type CloneGroup struct {
	Fragments []CloneFragment
	Type      types.CloneType
}

// DuplicateConfig mirrors the config.Analysis fields spec.md
// §4.5 names: shingle size, minimum group size, Jaccard threshold, and
// whether identifier normalization is aggressive.
type DuplicateConfig struct {
	ShingleSize   int
	MinGroupSize  int
	JaccardMin    float64
	Aggressive    bool
}

// ExtractFragments collects one CloneFragment per function-shaped node
// in the dag, tokenizing its source text.
func ExtractFragments(dag *ast.Dag, fileRoots map[types.FileID]types.NodeID, content map[types.FileID][]byte, cfg DuplicateConfig) []CloneFragment {
	var fragments []CloneFragment
	fileIDs := make([]types.FileID, 0, len(fileRoots))
	for id := range fileRoots {
		fileIDs = append(fileIDs, id)
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	for _, fileID := range fileIDs {
		src := content[fileID]
		dag.Walk(fileRoots[fileID], func(id types.NodeID, n *ast.UnifiedAstNode) bool {
			if n.Kind != types.KindFunction {
				return true
			}
			text := src[n.RangeLo:n.RangeHi]
			tokens := tokenize(text, cfg.Aggressive)
			shingles := shingle(tokens, cfg.ShingleSize)
			fragments = append(fragments, CloneFragment{
				FileID:     fileID,
				RootNode:   id,
				Range:      n.Range(),
				TokenCount: len(tokens),
				Signature:  minHashSignature(shingles),
				Semantic:   n.SemanticHash,
				Structural: n.StructuralHash,
			})
			return true
		})
	}
	return fragments
}

// tokenize splits source text on whitespace and punctuation boundaries
// into a flat token list; under aggressive mode each distinct
// identifier-shaped token becomes VAR_i, numbered by first appearance
// in text, so consistently renamed clones produce identical shingles
// (spec.md §4.5: "identifiers to canonical VAR_i under aggressive
// mode").
func tokenize(text []byte, aggressive bool) []string {
	var tokens []string
	var cur strings.Builder
	idents := make(map[string]int)
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		tok := cur.String()
		cur.Reset()
		if aggressive && isIdentifierToken(tok) {
			n, ok := idents[tok]
			if !ok {
				n = len(idents)
				idents[tok] = n
			}
			tok = "VAR_" + strconv.Itoa(n)
		} else if isNumericLiteral(tok) {
			tok = "LITERAL"
		}
		tokens = append(tokens, tok)
	}
	for _, r := range string(text) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case isWordRune(r):
			cur.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isIdentifierToken(s string) bool {
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	return true
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}

// shingle builds k-token contiguous n-grams, joined for hashing.
func shingle(tokens []string, k int) []string {
	if k <= 0 {
		k = defaultShingleSize
	}
	if len(tokens) < k {
		return []string{strings.Join(tokens, " ")}
	}
	shingles := make([]string, 0, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+k], " "))
	}
	return shingles
}

// minHashSignature computes 128 minhash values, one per permutation,
// using xxhash seeded by the permutation index (a standard substitute
// for true random permutations: salt-then-hash approximates an
// independent permutation family well enough for LSH at this scale).
func minHashSignature(shingles []string) [minHashPermutations]uint64 {
	var sig [minHashPermutations]uint64
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for _, s := range shingles {
		base := xxhash.Sum64String(s)
		for i := 0; i < minHashPermutations; i++ {
			h := mix64(base, uint64(i))
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// mix64 combines a base hash with a permutation seed using the
// splitmix64 finalizer, cheap and well-distributed for this purpose.
func mix64(x, seed uint64) uint64 {
	x += seed*0x9E3779B97F4A7C15 + 1
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// lshBucket computes the LSH bucket key for one band of a signature.
func lshBucket(sig [minHashPermutations]uint64, band int) uint64 {
	h := xxhash.New()
	for r := 0; r < lshRows; r++ {
		idx := band*lshRows + r
		var b [8]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(sig[idx] >> (8 * i))
		}
		h.Write(b[:])
	}
	return h.Sum64()
}

// jaccardEstimate returns the fraction of matching minhash slots, an
// unbiased estimator of the true Jaccard similarity of the shingle sets.
func jaccardEstimate(a, b [minHashPermutations]uint64) float64 {
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(minHashPermutations)
}

// unionFind is the classic disjoint-set structure used to group
// fragments connected by an above-threshold Jaccard edge.
type unionFind struct{ parent, rank []int }

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// DetectClones runs the full pipeline of spec.md §4.5: LSH candidate
// generation, exact Jaccard refinement, union-find grouping, and
// per-group clone-type classification.
func DetectClones(fragments []CloneFragment, cfg DuplicateConfig) []CloneGroup {
	if cfg.MinGroupSize <= 0 {
		cfg.MinGroupSize = 2
	}
	if cfg.JaccardMin <= 0 {
		cfg.JaccardMin = 0.8
	}

	uf := newUnionFind(len(fragments))
	buckets := make(map[int]map[uint64][]int, lshBands)
	for band := 0; band < lshBands; band++ {
		buckets[band] = make(map[uint64][]int)
	}
	for i, f := range fragments {
		for band := 0; band < lshBands; band++ {
			key := lshBucket(f.Signature, band)
			buckets[band][key] = append(buckets[band][key], i)
		}
	}

	seenPair := make(map[[2]int]bool)
	for band := 0; band < lshBands; band++ {
		for _, members := range buckets[band] {
			if len(members) < 2 {
				continue
			}
			for a := 0; a < len(members); a++ {
				for b := a + 1; b < len(members); b++ {
					i, j := members[a], members[b]
					if i > j {
						i, j = j, i
					}
					pair := [2]int{i, j}
					if seenPair[pair] {
						continue
					}
					seenPair[pair] = true
					if jaccardEstimate(fragments[i].Signature, fragments[j].Signature) >= cfg.JaccardMin {
						uf.union(i, j)
					}
				}
			}
		}
	}

	groupsByRoot := make(map[int][]int)
	for i := range fragments {
		root := uf.find(i)
		groupsByRoot[root] = append(groupsByRoot[root], i)
	}

	var groups []CloneGroup
	for _, members := range groupsByRoot {
		if len(members) < cfg.MinGroupSize {
			continue
		}
		frags := make([]CloneFragment, len(members))
		for k, idx := range members {
			frags[k] = fragments[idx]
		}
		sort.Slice(frags, func(i, j int) bool {
			if frags[i].FileID != frags[j].FileID {
				return frags[i].FileID < frags[j].FileID
			}
			return frags[i].Range.Lo < frags[j].Range.Lo
		})
		groups = append(groups, CloneGroup{Fragments: frags, Type: classifyCloneType(frags)})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Fragments[0].Range.Lo < groups[j].Fragments[0].Range.Lo
	})
	return groups
}

// classifyCloneType inspects semantic/structural hashes across a
// group: all-matching semantic_hash is Type-1; otherwise all-matching
// structural_hash (shape, ignoring identifiers) is Type-2; anything
// else that still cleared the Jaccard threshold is Type-3. Type-4
// (semantic) is never assigned.
func classifyCloneType(frags []CloneFragment) types.CloneType {
	allSemanticEqual := true
	allStructuralEqual := true
	for i := 1; i < len(frags); i++ {
		if frags[i].Semantic != frags[0].Semantic {
			allSemanticEqual = false
		}
		if frags[i].Structural != frags[0].Structural {
			allStructuralEqual = false
		}
	}
	switch {
	case allSemanticEqual:
		return types.CloneType1Exact
	case allStructuralEqual:
		return types.CloneType2Renamed
	default:
		return types.CloneType3Gapped
	}
}

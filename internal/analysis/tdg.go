package analysis

import "github.com/standardbeagle/codelens/internal/types"

// DefectScore is the per-entity fused score of spec.md §3.
type DefectScore struct {
	FileID     types.FileID
	NodeID     types.NodeID
	Total      float64
	Complexity float64
	Churn      float64
	Duplication float64
	Coupling   float64
	NameQuality float64
	TestCoverage float64
	Confidence types.Confidence
}

// TDGWeights controls the fused blend; field names mirror DefectScore's
// components so callers can tune them from config without guessing
// what each number means.
type TDGWeights struct {
	Complexity, Churn, Duplication, Coupling, NameQuality, TestCoverage float64
}

func DefaultTDGWeights() TDGWeights {
	return TDGWeights{
		Complexity:   0.30,
		Churn:        0.25,
		Duplication:  0.15,
		Coupling:     0.15,
		NameQuality:  0.05,
		TestCoverage: 0.10,
	}
}

// FuseTDG combines normalized [0,1] component scores from the other
// analyzers into one DefectScore per function. Missing components
// (an analyzer that wasn't run) are treated as zero contribution and
// lower confidence, matching the deep-context orchestrator's graceful
// degradation policy (spec.md §4.10).
func FuseTDG(fileID types.FileID, nodeID types.NodeID, complexity, churn, duplication, coupling, nameQuality, testCoverage float64, availableComponents int, weights TDGWeights) DefectScore {
	total := weights.Complexity*complexity +
		weights.Churn*churn +
		weights.Duplication*duplication +
		weights.Coupling*coupling +
		weights.NameQuality*nameQuality +
		weights.TestCoverage*testCoverage

	confidence := types.ConfidenceLow
	switch {
	case availableComponents >= 5:
		confidence = types.ConfidenceHigh
	case availableComponents >= 3:
		confidence = types.ConfidenceMedium
	}

	return DefectScore{
		FileID:       fileID,
		NodeID:       nodeID,
		Total:        clamp01(total),
		Complexity:   complexity,
		Churn:        churn,
		Duplication:  duplication,
		Coupling:     coupling,
		NameQuality:  nameQuality,
		TestCoverage: testCoverage,
		Confidence:   confidence,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizeComplexity maps a raw cyclomatic count against the
// project's P99 so a score of 1.0 means "at or above the worst
// percentile seen in this run."
func NormalizeComplexity(cyclomatic uint32, p99 float64) float64 {
	if p99 <= 0 {
		return 0
	}
	return clamp01(float64(cyclomatic) / p99)
}

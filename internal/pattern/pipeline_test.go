package pattern

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_DedupKeepsHighestConfidence(t *testing.T) {
	matches := []Match{
		{PatternID: "p1", Category: "errors", File: "a.go", Line: 10, Confidence: 0.6},
		{PatternID: "p1", Category: "errors", File: "a.go", Line: 10, Confidence: 0.9},
		{PatternID: "p1", Category: "errors", File: "b.go", Line: 5, Confidence: 0.8},
	}
	grouped := Group(matches)
	p := grouped["p1"]
	require.Len(t, p.Locations, 2)
	require.Equal(t, 2, p.LocationCount)
	require.Equal(t, 2, p.DistinctFileCount)

	for _, l := range p.Locations {
		if l.File == "a.go" {
			require.Equal(t, 0.9, l.Confidence)
		}
	}
}

func TestReconcile_CountersMatchLocations(t *testing.T) {
	p := &AggregatedPattern{
		ID: "p1",
		Locations: []LocationEntry{
			{File: "a.go", Line: 1, Confidence: 1.0},
			{File: "a.go", Line: 2, Confidence: 0.5, IsOutlier: true},
			{File: "b.go", Line: 1, Confidence: 0.5},
		},
	}
	Reconcile(p)
	require.Equal(t, 3, p.LocationCount)
	require.Equal(t, 1, p.OutlierCount)
	require.Equal(t, 2, p.DistinctFileCount)
	require.InDelta(t, 0.6667, p.ConfidenceMean, 0.001)
	require.False(t, p.Dirty)
	require.NotZero(t, p.LocationSetFingerprint)
}

func TestPipeline_ExactPath_AutoMergesIdenticalLocationSets(t *testing.T) {
	shared := []Match{
		{PatternID: "canonical", Category: "errors", File: "a.go", Line: 1, Confidence: 0.9},
		{PatternID: "canonical", Category: "errors", File: "a.go", Line: 2, Confidence: 0.9},
		{PatternID: "canonical", Category: "errors", File: "b.go", Line: 1, Confidence: 0.9},
	}
	twin := []Match{
		{PatternID: "twin", Category: "errors", File: "a.go", Line: 1, Confidence: 0.9},
		{PatternID: "twin", Category: "errors", File: "a.go", Line: 2, Confidence: 0.9},
		{PatternID: "twin", Category: "errors", File: "b.go", Line: 1, Confidence: 0.9},
	}
	matches := append(append([]Match{}, shared...), twin...)

	pl := NewDefaultPipeline()
	res := pl.Run(matches)

	require.Len(t, res.MergeCandidates, 1)
	require.Equal(t, DecisionAutoMerge, res.MergeCandidates[0].Decision)
	require.Equal(t, 1.0, res.MergeCandidates[0].Similarity)

	top := res.TopLevelPatterns()
	require.Len(t, top, 1)
	require.Equal(t, 3, top[0].LocationCount)
}

// TestPipeline_MinHashPath_MergesNearDuplicates grounds the pipeline's
// MinHash-triggering scenario: with the auto threshold at its default
// (100), a category group of 150 patterns forces the MinHash-LSH path
// instead of the exact O(n^2) comparison. A canonical pattern and 20
// exact-duplicate patterns (identical location sets, for deterministic
// similarity estimation rather than an approximate 96% overlap) must
// still be found and auto-merged as children of the canonical pattern.
func TestPipeline_MinHashPath_MergesNearDuplicates(t *testing.T) {
	var matches []Match
	canonicalLocs := []struct {
		file string
		line int
	}{{"a.go", 1}, {"a.go", 2}, {"b.go", 1}, {"c.go", 5}, {"d.go", 9}}

	addPattern := func(id string) {
		for _, loc := range canonicalLocs {
			matches = append(matches, Match{
				PatternID: id, Category: "naming", File: loc.file, Line: loc.line, Confidence: 0.9,
			})
		}
	}

	addPattern("canonical")
	for i := 0; i < 20; i++ {
		addPattern(fmt.Sprintf("dup-%d", i))
	}
	// Pad the category group to 150 total distinct patterns so the
	// pipeline selects the MinHash path over exact comparison.
	for i := 0; i < 129; i++ {
		matches = append(matches, Match{
			PatternID: fmt.Sprintf("unique-%d", i), Category: "naming",
			File: fmt.Sprintf("u%d.go", i), Line: i + 1, Confidence: 0.7,
		})
	}

	pl := NewDefaultPipeline()
	res := pl.Run(matches)

	canonical := res.Patterns["canonical"]
	require.NotNil(t, canonical)

	mergedChildren := 0
	for i := 0; i < 20; i++ {
		child := res.Patterns[fmt.Sprintf("dup-%d", i)]
		require.NotNil(t, child)
		if child.IsChild() {
			mergedChildren++
		}
	}
	require.Equal(t, 20, mergedChildren, "all 20 near-duplicates should merge under the canonical pattern")

	// Union size equals the canonical location count (all duplicates
	// share the exact same 5 locations, so the reconciled count is the
	// union, not the sum).
	require.Equal(t, 5, canonical.LocationCount)

	top := res.TopLevelPatterns()
	for _, p := range top {
		require.NotContains(t, []string{"dup-0", "dup-1"}, p.ID)
	}
}

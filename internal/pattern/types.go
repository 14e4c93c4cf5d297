// Package pattern implements the seven-phase aggregation pipeline that
// turns a flat stream of detector matches into aggregated patterns with
// reconciled counters, merge hierarchies, and a gold-layer view ready
// for persistence.
package pattern

import (
	"sort"
	"strconv"
)

// Match is one detector hit: a single location where a pattern was
// observed, carrying the detector's raw confidence and metadata.
type Match struct {
	File           string
	Line           int
	Column         int
	PatternID      string
	Category       string
	Confidence     float64
	Method         string
	MatchedText    string
	CWEIDs         []string
	OWASPCategory  string
}

// LocationEntry is one reconciled location inside an AggregatedPattern.
type LocationEntry struct {
	File        string
	Line        int
	Column      int
	Confidence  float64
	MatchedText string
	IsOutlier   bool
}

func locationKey(l LocationEntry) string {
	return l.File + ":" + strconv.Itoa(l.Line)
}

// Hierarchy links an aggregated pattern to its merge ancestry.
type Hierarchy struct {
	ParentID   string // empty when this pattern has no parent
	MergedFrom []string
	Aliases    []string
}

// AggregatedPattern is the union of matches for one pattern identifier,
// with reconciled counts and metadata (spec §3).
type AggregatedPattern struct {
	ID                     string
	Category               string
	Locations              []LocationEntry
	LocationCount          int
	OutlierCount           int
	DistinctFileCount      int
	ConfidenceMean         float64
	ConfidenceStdDev       float64
	Hierarchy              *Hierarchy
	Dirty                  bool
	LocationSetFingerprint uint64
}

// IsChild reports whether this pattern was folded into another as part
// of hierarchy construction.
func (p *AggregatedPattern) IsChild() bool {
	return p.Hierarchy != nil && p.Hierarchy.ParentID != ""
}

func (p *AggregatedPattern) locationKeySet() map[string]bool {
	set := make(map[string]bool, len(p.Locations))
	for _, l := range p.Locations {
		set[locationKey(l)] = true
	}
	return set
}

func (p *AggregatedPattern) sortedLocationKeys() []string {
	set := p.locationKeySet()
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeDecision classifies a candidate pair by similarity threshold
// (spec §4.4 phase 3).
type MergeDecision string

const (
	DecisionAutoMerge    MergeDecision = "auto_merge"
	DecisionSuggestMerge MergeDecision = "suggest_merge"
	DecisionFlagReview   MergeDecision = "flag_review"
	DecisionIgnore       MergeDecision = "ignore"
)

// DecisionFromSimilarity applies the spec's fixed thresholds: >0.95
// auto-merge, >0.90 suggest merge, >=0.85 flag for review, else ignore.
func DecisionFromSimilarity(sim float64) MergeDecision {
	switch {
	case sim > 0.95:
		return DecisionAutoMerge
	case sim > 0.90:
		return DecisionSuggestMerge
	case sim >= 0.85:
		return DecisionFlagReview
	default:
		return DecisionIgnore
	}
}

// MergeCandidate is a pair of patterns flagged as possible
// near-duplicates, with the decision already classified.
type MergeCandidate struct {
	PatternA   string
	PatternB   string
	Similarity float64
	Decision   MergeDecision
}

// AggregationConfig tunes the pipeline's duplicate-detection phase.
type AggregationConfig struct {
	// MinHashEnabled forces the MinHash-LSH path regardless of count.
	MinHashEnabled bool
	// MinHashAutoThreshold switches to MinHash-LSH once the pattern
	// count in a category group exceeds this value.
	MinHashAutoThreshold int
	MinHashNumPerm        int
	MinHashNumBands       int
	DuplicateFlagThreshold float64
	SuggestMergeThreshold  float64
	AutoMergeThreshold     float64
}

// DefaultAggregationConfig mirrors the spec's default thresholds.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		MinHashEnabled:         false,
		MinHashAutoThreshold:   100,
		MinHashNumPerm:         128,
		MinHashNumBands:        16,
		DuplicateFlagThreshold: 0.85,
		SuggestMergeThreshold:  0.90,
		AutoMergeThreshold:     0.95,
	}
}

package convention

import (
	"fmt"

	"github.com/driftlang/drift/internal/confidence"
	"github.com/driftlang/drift/internal/pattern"
)

// Discoverer derives conventions from aggregated, confidence-scored
// patterns.
type Discoverer struct {
	config Config
}

// NewDiscoverer creates a discoverer with the given configuration.
func NewDiscoverer(cfg Config) *Discoverer {
	return &Discoverer{config: cfg}
}

// NewDefaultDiscoverer creates a discoverer with DefaultConfig.
func NewDefaultDiscoverer() *Discoverer {
	return NewDiscoverer(DefaultConfig())
}

// Discover derives conventions from aggregated patterns and their
// confidence scores, grouped by category to detect contested pairs and
// compute dominance ratios (spec §4.7).
func (d *Discoverer) Discover(patterns []*pattern.AggregatedPattern, scores map[string]confidence.Score, totalFiles uint64, now int64) []Convention {
	byCategory := make(map[string][]*pattern.AggregatedPattern)
	for _, p := range patterns {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	var out []Convention
	for _, p := range patterns {
		if uint64(p.LocationCount) < d.config.MinOccurrences {
			continue
		}
		if uint64(p.DistinctFileCount) < d.config.MinFiles {
			continue
		}

		group := byCategory[p.Category]
		dominance := dominanceRatio(p, group)
		contested := d.checkContested(p, group)

		if dominance < d.config.DominanceThreshold && !contested {
			continue
		}

		score, ok := scores[p.ID]
		if !ok {
			score = confidence.FromParams(1, 1, confidence.MomentumStable) // uniform prior
		}

		spreadRatio := 0.0
		if totalFiles > 0 {
			spreadRatio = float64(p.DistinctFileCount) / float64(totalFiles)
		}

		category := d.classify(contested, spreadRatio, score)

		out = append(out, Convention{
			ID:             fmt.Sprintf("conv_%s", p.ID),
			PatternID:      p.ID,
			Category:       category,
			Scope:          ScopeProject,
			Score:          score,
			DominanceRatio: dominance,
			DiscoveredAt:   now,
			LastSeen:       now,
			State:          StateDiscovered,
		})
	}
	return out
}

func dominanceRatio(p *pattern.AggregatedPattern, group []*pattern.AggregatedPattern) float64 {
	total := 0
	for _, g := range group {
		total += g.LocationCount
	}
	if total == 0 {
		return 0
	}
	return float64(p.LocationCount) / float64(total)
}

// checkContested reports whether another pattern in the same category
// group has an occurrence share within contestedThreshold of p's own
// share (spec §4.7 Contested classification, first-match-wins).
func (d *Discoverer) checkContested(p *pattern.AggregatedPattern, group []*pattern.AggregatedPattern) bool {
	total := 0
	for _, g := range group {
		total += g.LocationCount
	}
	if total == 0 {
		return false
	}
	myRatio := float64(p.LocationCount) / float64(total)

	for _, other := range group {
		if other.ID == p.ID {
			continue
		}
		otherRatio := float64(other.LocationCount) / float64(total)
		if abs(myRatio-otherRatio) <= d.config.ContestedThreshold {
			return true
		}
	}
	return false
}

// classify applies the spec's first-match-wins classification order:
// Contested, then Universal, Emerging, Legacy, else ProjectSpecific.
func (d *Discoverer) classify(contested bool, spreadRatio float64, score confidence.Score) Category {
	switch {
	case contested:
		return CategoryContested
	case spreadRatio >= d.config.UniversalSpreadThreshold && score.Tier == confidence.TierEstablished:
		return CategoryUniversal
	case score.Momentum == confidence.MomentumRising:
		return CategoryEmerging
	case score.Momentum == confidence.MomentumFalling:
		return CategoryLegacy
	default:
		return CategoryProjectSpecific
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

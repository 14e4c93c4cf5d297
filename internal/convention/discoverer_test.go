package convention

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/confidence"
	"github.com/driftlang/drift/internal/pattern"
)

func makeAggregated(id, category string, locations, files int) *pattern.AggregatedPattern {
	locs := make([]pattern.LocationEntry, locations)
	for i := range locs {
		locs[i] = pattern.LocationEntry{
			File:       fmt.Sprintf("file_%d.ts", i%files),
			Line:       i/files + 1,
			Confidence: 0.9,
		}
	}
	p := &pattern.AggregatedPattern{ID: id, Category: category, Locations: locs}
	pattern.Reconcile(p)
	return p
}

func TestDiscover_BasicConvention(t *testing.T) {
	d := NewDefaultDiscoverer()
	patterns := []*pattern.AggregatedPattern{makeAggregated("dominant", "structural", 80, 10)}
	scores := map[string]confidence.Score{
		"dominant": confidence.FromParams(90, 10, confidence.MomentumStable),
	}

	conventions := d.Discover(patterns, scores, 100, 1000)
	require.Len(t, conventions, 1)
	require.Equal(t, "dominant", conventions[0].PatternID)
}

func TestDiscover_BelowThresholdNotDiscovered(t *testing.T) {
	d := NewDefaultDiscoverer()
	patterns := []*pattern.AggregatedPattern{makeAggregated("rare", "structural", 2, 1)}
	scores := map[string]confidence.Score{}

	conventions := d.Discover(patterns, scores, 100, 1000)
	require.Empty(t, conventions)
}

func TestDiscover_ContestedConvention(t *testing.T) {
	d := NewDefaultDiscoverer()
	patterns := []*pattern.AggregatedPattern{
		makeAggregated("style_a", "structural", 45, 10),
		makeAggregated("style_b", "structural", 55, 12),
	}
	scores := map[string]confidence.Score{
		"style_a": confidence.FromParams(10, 5, confidence.MomentumStable),
		"style_b": confidence.FromParams(12, 5, confidence.MomentumStable),
	}

	conventions := d.Discover(patterns, scores, 100, 1000)
	found := false
	for _, c := range conventions {
		if c.Category == CategoryContested {
			found = true
		}
	}
	require.True(t, found, "should detect contested convention")
}

func TestCheckPromotion_RequiresDiscoveredAndHighConfidence(t *testing.T) {
	cfg := DefaultPromotionConfig()

	established := Convention{
		State: StateDiscovered,
		Score: confidence.Score{Tier: confidence.TierEstablished, PosteriorMean: 0.9},
	}
	require.True(t, CheckPromotion(established, cfg))

	alreadyApproved := established
	alreadyApproved.State = StateApproved
	require.False(t, CheckPromotion(alreadyApproved, cfg))

	lowConfidence := Convention{
		State: StateDiscovered,
		Score: confidence.Score{Tier: confidence.TierEstablished, PosteriorMean: 0.5},
	}
	require.False(t, CheckPromotion(lowConfidence, cfg))
}

func TestExpireStale_MarksConventionsPastWindow(t *testing.T) {
	const day = int64(24 * 60 * 60)
	conventions := []Convention{
		{State: StateDiscovered, LastSeen: 1000},
		{State: StateApproved, LastSeen: 1000},
	}
	now := 1000 + 91*day

	expired := ExpireStale(conventions, now, 90)
	require.Equal(t, 2, expired)
	require.Equal(t, StateExpired, conventions[0].State)
	require.Equal(t, StateExpired, conventions[1].State)
}

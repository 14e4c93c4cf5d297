package confidence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/pattern"
)

func makePattern(id string, locations, files int) *pattern.AggregatedPattern {
	locs := make([]pattern.LocationEntry, locations)
	for i := range locs {
		locs[i] = pattern.LocationEntry{
			File:       fmt.Sprintf("file_%d.go", i%files),
			Line:       i/files + 1,
			Confidence: 0.9,
		}
	}
	p := &pattern.AggregatedPattern{ID: id, Locations: locs}
	pattern.Reconcile(p)
	return p
}

func TestScore_HighSpreadPattern_IsEstablished(t *testing.T) {
	scorer := NewScorer(Config{TotalFiles: 100, DefaultAgeDays: 30})
	p := makePattern("test", 95, 95)
	score := scorer.Score(p, MomentumRising, 30)
	require.Equal(t, TierEstablished, score.Tier)
	require.GreaterOrEqual(t, score.PosteriorMean, 0.85)
}

func TestScore_LowSpreadPattern_NotEstablished(t *testing.T) {
	scorer := NewScorer(Config{TotalFiles: 100, DefaultAgeDays: 7})
	p := makePattern("test", 3, 2)
	score := scorer.Score(p, MomentumStable, 1)
	require.NotEqual(t, TierEstablished, score.Tier)
}

func TestScoreBatch_PreservesIDs(t *testing.T) {
	scorer := NewDefaultScorer()
	patterns := []*pattern.AggregatedPattern{
		makePattern("a", 50, 20),
		makePattern("b", 10, 5),
	}
	scores := scorer.ScoreBatch(patterns)
	require.Len(t, scores, 2)
	require.Contains(t, scores, "a")
	require.Contains(t, scores, "b")
}

func TestScoreWithMomentum_DecayLowersPosteriorMean(t *testing.T) {
	scorer := NewScorer(Config{TotalFiles: 100, DefaultAgeDays: 30})
	p := makePattern("test", 90, 85)

	tracker := NewTracker()
	for i := 0; i < 5; i++ {
		tracker.Record(90)
	}

	fresh := scorer.ScoreWithMomentum(p, tracker, 30, 0)
	stale := scorer.ScoreWithMomentum(p, tracker, 30, 60)

	require.Less(t, stale.PosteriorMean, fresh.PosteriorMean)
}

func TestCredibleInterval_ContainsPosteriorMean(t *testing.T) {
	mean := PosteriorMean(40, 10)
	interval := CredibleInterval(40, 10, 0.95)
	require.LessOrEqual(t, interval.Low, mean)
	require.GreaterOrEqual(t, interval.High, mean)
}

func TestTrackerDirection_RisingWindow(t *testing.T) {
	tr := NewTracker()
	for _, v := range []int{10, 20, 30, 40, 50} {
		tr.Record(v)
	}
	require.Equal(t, MomentumRising, tr.Direction())
}

func TestTrackerDirection_FallingWindow(t *testing.T) {
	tr := NewTracker()
	for _, v := range []int{50, 40, 30, 20, 10} {
		tr.Record(v)
	}
	require.Equal(t, MomentumFalling, tr.Direction())
}

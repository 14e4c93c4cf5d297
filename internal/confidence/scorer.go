package confidence

import "github.com/driftlang/drift/internal/pattern"

// Config tunes the scorer's spread baseline and default age.
type Config struct {
	// TotalFiles is the project's total file count, used as the
	// Beta-posterior trial count and the Spread factor's denominator.
	TotalFiles uint64
	// DefaultAgeDays is used by ScoreBatch when no age is tracked.
	DefaultAgeDays uint64
}

// DefaultConfig mirrors the scorer's Rust counterpart defaults.
func DefaultConfig() Config {
	return Config{TotalFiles: 100, DefaultAgeDays: 7}
}

// Scorer computes confidence scores for aggregated patterns.
type Scorer struct {
	config Config
}

// NewScorer builds a scorer with the given configuration.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{config: cfg}
}

// NewDefaultScorer builds a scorer with DefaultConfig.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultConfig())
}

// Score computes the full Beta-posterior confidence score for one
// aggregated pattern (spec §4.5 steps 1-4).
func (s *Scorer) Score(p *pattern.AggregatedPattern, momentum Momentum, daysSinceFirstSeen uint64) Score {
	totalObservations := s.config.TotalFiles
	successes := uint64(p.DistinctFileCount)
	baseAlpha, baseBeta := PosteriorParams(successes, totalObservations)

	totalLocations := totalObservations
	if totalLocations == 0 {
		totalLocations = 1
	}

	factorInput := FactorInput{
		Occurrences:        uint64(p.LocationCount),
		TotalLocations:      totalLocations,
		Variance:            p.ConfidenceStdDev * p.ConfidenceStdDev,
		DaysSinceFirstSeen: daysSinceFirstSeen,
		FileCount:           uint64(p.DistinctFileCount),
		TotalFiles:          s.config.TotalFiles,
		Momentum:            momentum,
	}

	factors := ComputeFactors(factorInput)
	deltaAlpha, deltaBeta := FactorsToAlphaBeta(factors, uint64(p.LocationCount))

	finalAlpha := baseAlpha + deltaAlpha
	finalBeta := baseBeta + deltaBeta

	return FromParams(finalAlpha, finalBeta, momentum)
}

// ScoreBatch scores every pattern with Stable momentum and the
// configured default age; use ScoreWithMomentum for per-pattern
// momentum tracking.
func (s *Scorer) ScoreBatch(patterns []*pattern.AggregatedPattern) map[string]Score {
	out := make(map[string]Score, len(patterns))
	for _, p := range patterns {
		out[p.ID] = s.Score(p, MomentumStable, s.config.DefaultAgeDays)
	}
	return out
}

// ScoreWithMomentum scores a pattern using a live momentum tracker and
// applies temporal decay for staleness (spec §4.5 step 5): decay only
// multiplies alpha, beta is left unchanged, and the posterior mean,
// tier, and credible interval are recomputed from the decayed alpha.
func (s *Scorer) ScoreWithMomentum(p *pattern.AggregatedPattern, tracker *Tracker, daysSinceFirstSeen, daysSinceLastSeen uint64) Score {
	momentum := tracker.Direction()
	score := s.Score(p, momentum, daysSinceFirstSeen)

	decay := TemporalDecay(daysSinceLastSeen)
	if decay < 1.0 {
		score.Alpha *= decay
		score.PosteriorMean = PosteriorMean(score.Alpha, score.Beta)
		score.Tier = TierFromPosteriorMean(score.PosteriorMean)
		score.CredibleInterval = CredibleInterval(score.Alpha, score.Beta, 0.95)
	}
	score.Momentum = momentum
	return score
}

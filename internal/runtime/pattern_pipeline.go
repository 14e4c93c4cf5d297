package runtime

import (
	"context"
	"time"

	"github.com/driftlang/drift/internal/confidence"
	"github.com/driftlang/drift/internal/convention"
	"github.com/driftlang/drift/internal/outlier"
	"github.com/driftlang/drift/internal/pattern"
	"github.com/driftlang/drift/internal/storage"
)

// enqueuePatternAnalysis runs the confidence/outlier/convention stages
// spec §4.5-§4.7 describe over result's top-level patterns, and
// persists every stage's output (SPEC_FULL §4 package table: these
// three packages exist independently of internal/pattern and were not
// previously invoked from anywhere).
func (r *Runtime) enqueuePatternAnalysis(ctx context.Context, result pattern.Result, totalFiles int) error {
	topLevel := result.TopLevelPatterns()
	if len(topLevel) == 0 {
		return nil
	}

	scores := confidence.NewDefaultScorer().ScoreBatch(topLevel)
	now := time.Now().Unix()

	confidenceRows := make(storage.InsertPatternConfidence, 0, len(scores))
	for id, score := range scores {
		confidenceRows = append(confidenceRows, storage.PatternConfidenceRow{
			PatternID: id, Alpha: score.Alpha, Beta: score.Beta, PosteriorMean: score.PosteriorMean,
			CredibleIntervalLow: score.CredibleInterval.Low, CredibleIntervalHigh: score.CredibleInterval.High,
			Tier: string(score.Tier), Momentum: string(score.Momentum), UpdatedAt: now,
		})
	}
	if len(confidenceRows) > 0 {
		if err := r.store.Enqueue(ctx, confidenceRows); err != nil {
			return err
		}
	}

	var outlierRows storage.InsertOutliers
	detector := outlier.New()
	for _, p := range topLevel {
		if len(p.Locations) < 3 {
			continue
		}
		values := make([]float64, len(p.Locations))
		for i, loc := range p.Locations {
			values[i] = loc.Confidence
		}
		for _, res := range detector.Detect(values) {
			if !res.IsOutlier || res.Index >= len(p.Locations) {
				continue
			}
			loc := p.Locations[res.Index]
			outlierRows = append(outlierRows, storage.OutlierRow{
				PatternID: p.ID, File: loc.File, Line: loc.Line,
				DeviationScore: res.DeviationScore, Significance: string(res.Significance), Method: string(res.Method),
			})
		}
	}
	if len(outlierRows) > 0 {
		if err := r.store.Enqueue(ctx, outlierRows); err != nil {
			return err
		}
	}

	conventions := convention.NewDefaultDiscoverer().Discover(topLevel, scores, uint64(totalFiles), now)
	conventionRows := make(storage.InsertConventions, 0, len(conventions))
	for _, c := range conventions {
		conventionRows = append(conventionRows, storage.ConventionRow{
			PatternID: c.PatternID, Category: string(c.Category), Scope: string(c.Scope),
			DominanceRatio: c.DominanceRatio, PromotionStatus: string(c.State),
			DiscoveredAt: c.DiscoveredAt, LastSeen: c.LastSeen,
		})
	}
	if len(conventionRows) > 0 {
		if err := r.store.Enqueue(ctx, conventionRows); err != nil {
			return err
		}
	}

	return nil
}

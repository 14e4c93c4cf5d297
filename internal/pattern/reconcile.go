package pattern

import (
	"math"
	"strings"

	"github.com/driftlang/drift/internal/fingerprint"
)

// Reconcile recomputes an aggregated pattern's counters from its current
// location list: location count, outlier count, distinct-file count,
// confidence mean and standard deviation, and the location-set
// fingerprint. The dirty flag is always cleared last, so a partial
// failure before this point leaves the pattern dirty and eligible to be
// re-reconciled (spec invariant on the dirty flag).
func Reconcile(p *AggregatedPattern) {
	p.Locations = dedupeLocations(p.Locations)
	p.LocationCount = len(p.Locations)

	files := make(map[string]bool, len(p.Locations))
	outliers := 0
	sum := 0.0
	for _, l := range p.Locations {
		files[l.File] = true
		if l.IsOutlier {
			outliers++
		}
		sum += l.Confidence
	}
	p.DistinctFileCount = len(files)
	p.OutlierCount = outliers

	if p.LocationCount == 0 {
		p.ConfidenceMean = 0
		p.ConfidenceStdDev = 0
	} else {
		mean := sum / float64(p.LocationCount)
		variance := 0.0
		for _, l := range p.Locations {
			d := l.Confidence - mean
			variance += d * d
		}
		variance /= float64(p.LocationCount)
		p.ConfidenceMean = mean
		p.ConfidenceStdDev = math.Sqrt(variance)
	}

	p.LocationSetFingerprint = fingerprint.OfString(strings.Join(p.sortedLocationKeys(), "|"))
	p.Dirty = false
}

// dedupeLocations collapses entries sharing the same file:line key,
// keeping the highest-confidence observation. This is phase 2's dedup
// rule (spec §4.4), reapplied at reconciliation time so that folding a
// merged child's locations into its parent (phase 4) still produces a
// union rather than a sum.
func dedupeLocations(locs []LocationEntry) []LocationEntry {
	best := make(map[string]int, len(locs))
	out := make([]LocationEntry, 0, len(locs))
	for _, l := range locs {
		key := locationKey(l)
		if idx, ok := best[key]; ok {
			if l.Confidence > out[idx].Confidence {
				out[idx] = l
			}
			continue
		}
		best[key] = len(out)
		out = append(out, l)
	}
	return out
}

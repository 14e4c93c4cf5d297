package pattern

// PatternsNeedingReaggregation returns the IDs of patterns that have at
// least one location in a changed file.
func PatternsNeedingReaggregation(existing map[string]*AggregatedPattern, changedFiles map[string]bool) map[string]bool {
	affected := make(map[string]bool)
	for id, p := range existing {
		for _, l := range p.Locations {
			if changedFiles[l.File] {
				affected[id] = true
				break
			}
		}
	}
	return affected
}

// RemoveStaleLocations drops every location belonging to a changed file
// from the pattern and marks it dirty.
func RemoveStaleLocations(p *AggregatedPattern, changedFiles map[string]bool) {
	kept := p.Locations[:0]
	for _, l := range p.Locations {
		if !changedFiles[l.File] {
			kept = append(kept, l)
		}
	}
	p.Locations = kept
	p.Dirty = true
}

// IncrementalAggregate re-aggregates only matches from changedFiles: it
// strips stale locations belonging to those files out of the existing
// pattern set, merges in freshly produced matches, and reconciles every
// affected pattern (spec §4.4 phase 7).
func IncrementalAggregate(matches []Match, existing map[string]*AggregatedPattern, changedFiles map[string]bool) map[string]*AggregatedPattern {
	changedMatches := make([]Match, 0, len(matches))
	for _, m := range matches {
		if changedFiles[m.File] {
			changedMatches = append(changedMatches, m)
		}
	}

	affected := PatternsNeedingReaggregation(existing, changedFiles)
	for id := range affected {
		RemoveStaleLocations(existing[id], changedFiles)
	}

	freshGroups := Group(changedMatches)

	for id, fresh := range freshGroups {
		if cur, ok := existing[id]; ok {
			cur.Locations = append(cur.Locations, fresh.Locations...)
			cur.Dirty = true
		} else {
			existing[id] = fresh
		}
	}

	for _, p := range existing {
		if p.Dirty {
			Reconcile(p)
		}
	}

	return existing
}

package pattern

// Group implements phases 1-2: group matches by pattern identifier, then
// dedup within a group on (file, line, pattern) keeping the highest
// confidence observation.
func Group(matches []Match) map[string]*AggregatedPattern {
	byPattern := make(map[string]*AggregatedPattern)
	// dedupe tracks the best-confidence location seen so far per
	// (patternID, file, line).
	dedupe := make(map[string]map[string]int) // patternID -> "file:line" -> index into Locations

	for _, m := range matches {
		p, ok := byPattern[m.PatternID]
		if !ok {
			p = &AggregatedPattern{ID: m.PatternID, Category: m.Category, Dirty: true}
			byPattern[m.PatternID] = p
			dedupe[m.PatternID] = make(map[string]int)
		}

		entry := LocationEntry{
			File:        m.File,
			Line:        m.Line,
			Column:      m.Column,
			Confidence:  m.Confidence,
			MatchedText: m.MatchedText,
		}
		key := locationKey(entry)

		if idx, exists := dedupe[m.PatternID][key]; exists {
			if entry.Confidence > p.Locations[idx].Confidence {
				p.Locations[idx] = entry
			}
			continue
		}

		dedupe[m.PatternID][key] = len(p.Locations)
		p.Locations = append(p.Locations, entry)
	}

	for _, p := range byPattern {
		Reconcile(p)
	}
	return byPattern
}

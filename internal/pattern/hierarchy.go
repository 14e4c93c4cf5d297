package pattern

// BuildHierarchies applies auto-merge decisions from candidates: the
// smaller-count pattern of each auto-merge pair becomes a child, its
// locations fold into the parent, and the parent is marked dirty so a
// later reconciliation pass recomputes its counters (spec §4.4 phase 4).
func BuildHierarchies(patterns map[string]*AggregatedPattern, candidates []MergeCandidate) {
	for _, c := range candidates {
		if c.Decision != DecisionAutoMerge {
			continue
		}
		a, okA := patterns[c.PatternA]
		b, okB := patterns[c.PatternB]
		if !okA || !okB {
			continue
		}
		// Both may already have been folded by an earlier candidate in
		// this same pass; follow to the current root before merging.
		a = root(patterns, a)
		b = root(patterns, b)
		if a.ID == b.ID {
			continue
		}

		// The larger-count pattern survives as parent, counting distinct
		// location keys so locations already folded in this pass are not
		// counted twice. Ties are broken by ID so the outcome does not
		// depend on candidate-pair order.
		sizeA, sizeB := len(LocationKeySet(a)), len(LocationKeySet(b))
		parent, child := a, b
		switch {
		case sizeB > sizeA:
			parent, child = b, a
		case sizeB == sizeA && b.ID < a.ID:
			parent, child = b, a
		}

		mergeChildInto(parent, child)
	}
}

func root(patterns map[string]*AggregatedPattern, p *AggregatedPattern) *AggregatedPattern {
	for p.Hierarchy != nil && p.Hierarchy.ParentID != "" {
		next, ok := patterns[p.Hierarchy.ParentID]
		if !ok {
			break
		}
		p = next
	}
	return p
}

func mergeChildInto(parent, child *AggregatedPattern) {
	parent.Locations = append(parent.Locations, child.Locations...)
	parent.Dirty = true

	if parent.Hierarchy == nil {
		parent.Hierarchy = &Hierarchy{}
	}
	parent.Hierarchy.MergedFrom = append(parent.Hierarchy.MergedFrom, child.ID)
	parent.Hierarchy.MergedFrom = append(parent.Hierarchy.MergedFrom, child.Hierarchy.mergedFromOrNil()...)

	if child.Hierarchy == nil {
		child.Hierarchy = &Hierarchy{}
	}
	child.Hierarchy.ParentID = parent.ID
	child.Locations = nil
	child.Dirty = true
}

func (h *Hierarchy) mergedFromOrNil() []string {
	if h == nil {
		return nil
	}
	return h.MergedFrom
}

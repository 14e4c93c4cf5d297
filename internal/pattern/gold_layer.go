package pattern

// GoldLayerResult is the pipeline's phase-7 output: the set of
// top-level (non-child) patterns plus a count of how many patterns
// were folded into merges, ready for the storage layer to persist.
type GoldLayerResult struct {
	Patterns      []*AggregatedPattern
	MergedCount   int
	DirtyAtExit   int
}

// PrepareGoldLayer filters out merged-away children (those with a
// non-empty ParentID) and reports how many patterns were folded and how
// many still carry a dirty flag (a dirty pattern at this point is a bug
// in an upstream phase, since reconciliation is supposed to run last).
func PrepareGoldLayer(all []*AggregatedPattern) GoldLayerResult {
	var res GoldLayerResult
	for _, p := range all {
		if p.IsChild() {
			res.MergedCount++
			continue
		}
		res.Patterns = append(res.Patterns, p)
		if p.Dirty {
			res.DirtyAtExit++
		}
	}
	return res
}

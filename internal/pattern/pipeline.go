package pattern

// Pipeline runs the seven-phase aggregation flow described in spec
// §4.4: group, dedup, near-duplicate detection, hierarchy, reconcile,
// gold layer, and the incremental variant of phase 7.
type Pipeline struct {
	config AggregationConfig
}

// NewPipeline builds a pipeline with the given configuration.
func NewPipeline(cfg AggregationConfig) *Pipeline {
	return &Pipeline{config: cfg}
}

// NewDefaultPipeline builds a pipeline with DefaultAggregationConfig.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(DefaultAggregationConfig())
}

// Result is the pipeline's output.
type Result struct {
	Patterns       map[string]*AggregatedPattern
	MergeCandidates []MergeCandidate
	GoldLayer      GoldLayerResult
}

// TopLevelPatterns returns patterns with no parent, i.e. excluding
// merged-away children.
func (r Result) TopLevelPatterns() []*AggregatedPattern {
	var out []*AggregatedPattern
	for _, p := range r.Patterns {
		if !p.IsChild() {
			out = append(out, p)
		}
	}
	return out
}

// Run executes phases 1 through 6 plus the gold-layer refresh (phase 7
// full variant) over a flat list of matches from all files.
func (pl *Pipeline) Run(matches []Match) Result {
	grouped := Group(matches)

	byCategory := make(map[string][]*AggregatedPattern)
	for _, p := range grouped {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	var candidates []MergeCandidate
	for _, group := range byCategory {
		candidates = append(candidates, pl.detectDuplicates(group)...)
	}

	BuildHierarchies(grouped, candidates)

	for _, p := range grouped {
		Reconcile(p)
	}

	all := make([]*AggregatedPattern, 0, len(grouped))
	for _, p := range grouped {
		all = append(all, p)
	}

	return Result{
		Patterns:        grouped,
		MergeCandidates: candidates,
		GoldLayer:       PrepareGoldLayer(all),
	}
}

// RunIncremental executes the incremental variant of phase 7: only
// matches from changedFiles are re-aggregated, and stale locations in
// existing patterns belonging to those files are dropped first.
func (pl *Pipeline) RunIncremental(matches []Match, existing map[string]*AggregatedPattern, changedFiles map[string]bool) Result {
	merged := IncrementalAggregate(matches, existing, changedFiles)

	all := make([]*AggregatedPattern, 0, len(merged))
	for _, p := range merged {
		all = append(all, p)
	}

	return Result{
		Patterns:  merged,
		GoldLayer: PrepareGoldLayer(all),
	}
}

// detectDuplicates runs phase 3: exact Jaccard for small category
// groups, MinHash-LSH once the group exceeds the configured auto
// threshold or when MinHash is explicitly enabled.
func (pl *Pipeline) detectDuplicates(group []*AggregatedPattern) []MergeCandidate {
	useMinHash := pl.config.MinHashEnabled || len(group) > pl.config.MinHashAutoThreshold
	if !useMinHash {
		return FindDuplicatesExact(group, pl.config.DuplicateFlagThreshold)
	}
	return pl.detectDuplicatesMinHash(group)
}

func (pl *Pipeline) detectDuplicatesMinHash(group []*AggregatedPattern) []MergeCandidate {
	idx := NewMinHashIndex(pl.config.MinHashNumPerm, pl.config.MinHashNumBands)
	for _, p := range group {
		idx.Insert(p.ID, LocationKeySet(p))
	}

	raw := idx.FindCandidates()
	var out []MergeCandidate
	for _, pair := range raw {
		sim, ok := idx.EstimateSimilarity(pair[0], pair[1])
		if !ok || sim < pl.config.DuplicateFlagThreshold {
			continue
		}
		out = append(out, MergeCandidate{
			PatternA:   pair[0],
			PatternB:   pair[1],
			Similarity: sim,
			Decision:   DecisionFromSimilarity(sim),
		})
	}
	return out
}

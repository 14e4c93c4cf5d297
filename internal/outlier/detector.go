package outlier

// Detector is the top-level outlier detector with automatic method
// selection by sample size (spec §4.6).
type Detector struct {
	config Config
	rules  []Rule
}

// New creates a detector with the default configuration and the
// default rules: zero confidence and deviation beyond 3.0.
func New() *Detector {
	return &Detector{
		config: DefaultConfig(),
		rules:  []Rule{ZeroConfidenceRule(), ExtremeDeviationRule(3.0)},
	}
}

// WithConfig creates a detector with custom configuration.
func WithConfig(cfg Config) *Detector {
	return &Detector{
		config: cfg,
		rules:  []Rule{ZeroConfidenceRule(), ExtremeDeviationRule(3.0)},
	}
}

// AddRule registers an additional rule.
func (d *Detector) AddRule(r Rule) {
	d.rules = append(d.rules, r)
}

// SelectPrimaryMethod applies the spec's fixed sample-size thresholds.
func (d *Detector) SelectPrimaryMethod(n int) Method {
	switch {
	case n >= 30:
		return MethodZScore
	case n >= 25:
		return MethodESD
	case n >= 10:
		return MethodGrubbs
	default:
		return MethodRuleBased
	}
}

// Detect runs the full auto-selected pipeline and merges every stage's
// results by index, dropping duplicates (spec §4.6: "Results... are
// merged by index; duplicates are dropped").
func (d *Detector) Detect(values []float64) []Result {
	n := len(values)
	if n < d.config.MinSampleSize {
		return DetectRules(values, d.rules)
	}

	var all []Result
	seen := make(map[int]bool)

	add := func(results []Result) {
		for _, r := range results {
			if seen[r.Index] {
				continue
			}
			seen[r.Index] = true
			all = append(all, r)
		}
	}

	switch d.SelectPrimaryMethod(n) {
	case MethodZScore:
		add(DetectZScore(values, d.config.ZThreshold, d.config.MaxIterations))
	case MethodGrubbs:
		add(DetectGrubbs(values, d.config.Alpha))
	case MethodESD:
		maxOutliers := n / 5
		if maxOutliers < 1 {
			maxOutliers = 1
		}
		if maxOutliers > 10 {
			maxOutliers = 10
		}
		add(DetectESD(values, maxOutliers, d.config.Alpha))
	}

	if n >= 30 {
		add(DetectIQR(values, d.config.IQRMultiplier))
	}

	add(DetectMAD(values, d.config.MADThreshold))
	add(DetectRules(values, d.rules))

	return all
}

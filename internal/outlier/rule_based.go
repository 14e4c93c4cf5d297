package outlier

import (
	"fmt"
	"math"
)

// Context is the summary statistics passed to every rule check.
type Context struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Count  int
}

// ContextFromValues computes a Context from a slice of values.
func ContextFromValues(values []float64) Context {
	if len(values) == 0 {
		return Context{}
	}
	mean := meanOf(values)
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return Context{
		Mean:   mean,
		StdDev: sampleStdDev(values, mean),
		Min:    min,
		Max:    max,
		Count:  len(values),
	}
}

// Rule is a domain-specific outlier check that statistics alone can't
// capture: it receives one value plus the full dataset's Context and
// reports whether that value is an outlier.
type Rule struct {
	ID           string
	Description  string
	Check        func(value float64, ctx Context) bool
	Significance Significance
}

// DetectRules applies every rule to every value; at most one rule match
// is recorded per value (spec §4.6: "two default rules... always
// applied").
func DetectRules(values []float64, rules []Rule) []Result {
	if len(values) == 0 || len(rules) == 0 {
		return nil
	}
	ctx := ContextFromValues(values)

	var out []Result
	for i, v := range values {
		for _, rule := range rules {
			if !rule.Check(v, ctx) {
				continue
			}
			out = append(out, Result{
				Index:          i,
				Value:          v,
				TestStatistic:  0,
				DeviationScore: 0.5,
				Significance:   rule.Significance,
				Method:         MethodRuleBased,
				IsOutlier:      true,
			})
			break
		}
	}
	return out
}

// ZeroConfidenceRule flags non-positive values as outliers (spec §4.6
// default rule (a), significance High).
func ZeroConfidenceRule() Rule {
	return Rule{
		ID:          "zero_confidence",
		Description: "Zero-confidence values are always outliers",
		Check: func(v float64, _ Context) bool {
			return v <= 0.0
		},
		Significance: SignificanceHigh,
	}
}

// ExtremeDeviationRule flags values more than nStdDev standard
// deviations from the mean (spec §4.6 default rule (b), default
// critical at > 3σ, significance Critical).
func ExtremeDeviationRule(nStdDev float64) Rule {
	return Rule{
		ID:          fmt.Sprintf("extreme_deviation_%g", nStdDev),
		Description: fmt.Sprintf("Values more than %g stddev from mean", nStdDev),
		Check: func(v float64, ctx Context) bool {
			if ctx.StdDev <= 0 {
				return false
			}
			return math.Abs(v-ctx.Mean)/ctx.StdDev > nStdDev
		},
		Significance: SignificanceCritical,
	}
}

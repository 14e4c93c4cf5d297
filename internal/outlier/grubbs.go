package outlier

import "math"

// DetectGrubbs runs the (two-sided, iterative) Grubbs' test, removing
// the most extreme point each round while its test statistic exceeds
// the critical value for the given significance level alpha (spec §4.6,
// 10 <= n < 25 primary method).
func DetectGrubbs(values []float64, alpha float64) []Result {
	n := len(values)
	if n < 3 {
		return nil
	}

	removed := make([]bool, n)
	var out []Result
	remainingCount := n

	for remainingCount >= 3 {
		var remaining []float64
		for i, v := range values {
			if !removed[i] {
				remaining = append(remaining, v)
			}
		}
		mean := meanOf(remaining)
		std := sampleStdDev(remaining, mean)
		if std == 0 {
			break
		}

		worstIdx, worstG := -1, 0.0
		for i, v := range values {
			if removed[i] {
				continue
			}
			g := math.Abs(v-mean) / std
			if g > worstG {
				worstG = g
				worstIdx = i
			}
		}
		if worstIdx == -1 {
			break
		}

		critical := grubbsCritical(remainingCount, alpha)
		if worstG <= critical {
			break
		}

		removed[worstIdx] = true
		remainingCount--
		out = append(out, Result{
			Index:          worstIdx,
			Value:          values[worstIdx],
			TestStatistic:  worstG,
			DeviationScore: clampDeviation(worstG / (critical * 2)),
			Significance:   significanceFromRatio(worstG / critical),
			Method:         MethodGrubbs,
			IsOutlier:      true,
		})
	}

	return out
}

// grubbsCritical computes the two-sided Grubbs critical value:
// G = (n-1)/sqrt(n) * sqrt(t^2 / (n-2+t^2)), t the upper
// alpha/(2n)-critical value of the t distribution with n-2 df.
func grubbsCritical(n int, alpha float64) float64 {
	if n < 3 {
		return math.Inf(1)
	}
	nf := float64(n)
	df := nf - 2
	t := tQuantile(1-alpha/(2*nf), df)
	return (nf - 1) / math.Sqrt(nf) * math.Sqrt(t*t/(df+t*t))
}

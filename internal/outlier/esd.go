package outlier

import "math"

// DetectESD runs the generalized extreme Studentized deviate test: up
// to maxOutliers rounds, each computing the largest standardized
// residual and its critical lambda, tracking the deepest round whose
// statistic still exceeded its critical value (spec §4.6, 25 <= n < 30
// primary method, capped at min(10, n/5)).
func DetectESD(values []float64, maxOutliers int, alpha float64) []Result {
	n := len(values)
	if n < 3 || maxOutliers < 1 {
		return nil
	}

	type round struct {
		idx       int
		value     float64
		statistic float64
		lambda    float64
	}

	removed := make([]bool, n)
	var rounds []round

	for r := 0; r < maxOutliers; r++ {
		var remaining []float64
		for i, v := range values {
			if !removed[i] {
				remaining = append(remaining, v)
			}
		}
		m := len(remaining)
		if m < 3 {
			break
		}
		mean := meanOf(remaining)
		std := sampleStdDev(remaining, mean)
		if std == 0 {
			break
		}

		worstIdx, worstR := -1, 0.0
		for i, v := range values {
			if removed[i] {
				continue
			}
			stat := math.Abs(v-mean) / std
			if stat > worstR {
				worstR = stat
				worstIdx = i
			}
		}
		if worstIdx == -1 {
			break
		}

		lambda := esdCriticalLambda(m, alpha)
		removed[worstIdx] = true
		rounds = append(rounds, round{idx: worstIdx, value: values[worstIdx], statistic: worstR, lambda: lambda})
	}

	// The number of actual outliers is the largest round index i such
	// that R_i still exceeded lambda_i; every round up to and including
	// that one is reported.
	lastSignificant := -1
	for i, rd := range rounds {
		if rd.statistic > rd.lambda {
			lastSignificant = i
		}
	}

	var out []Result
	for i := 0; i <= lastSignificant && i < len(rounds); i++ {
		rd := rounds[i]
		out = append(out, Result{
			Index:          rd.idx,
			Value:          rd.value,
			TestStatistic:  rd.statistic,
			DeviationScore: clampDeviation(rd.statistic / (rd.lambda * 2)),
			Significance:   significanceFromRatio(rd.statistic / rd.lambda),
			Method:         MethodESD,
			IsOutlier:      true,
		})
	}
	return out
}

// esdCriticalLambda mirrors Grubbs' critical value formula applied at
// each ESD round's remaining sample size m.
func esdCriticalLambda(m int, alpha float64) float64 {
	return grubbsCritical(m, alpha)
}

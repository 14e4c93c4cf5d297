package outlier

import "math"

// DetectZScore iteratively trims the most extreme point, recomputing
// mean/stddev each round, up to maxIterations times, flagging any point
// whose z-score exceeds threshold (spec §4.6, n >= 30 primary method).
func DetectZScore(values []float64, threshold float64, maxIterations int) []Result {
	n := len(values)
	if n == 0 {
		return nil
	}

	removed := make([]bool, n)
	var out []Result

	for iter := 0; iter < maxIterations; iter++ {
		var remaining []float64
		for i, v := range values {
			if !removed[i] {
				remaining = append(remaining, v)
			}
		}
		if len(remaining) < 2 {
			break
		}
		mean := meanOf(remaining)
		std := sampleStdDev(remaining, mean)
		if std == 0 {
			break
		}

		worstIdx, worstZ := -1, 0.0
		for i, v := range values {
			if removed[i] {
				continue
			}
			z := math.Abs(v-mean) / std
			if z > worstZ {
				worstZ = z
				worstIdx = i
			}
		}

		if worstIdx == -1 || worstZ <= threshold {
			break
		}

		removed[worstIdx] = true
		out = append(out, Result{
			Index:          worstIdx,
			Value:          values[worstIdx],
			TestStatistic:  worstZ,
			DeviationScore: clampDeviation(worstZ / (threshold * 2)),
			Significance:   significanceFromRatio(worstZ / threshold),
			Method:         MethodZScore,
			IsOutlier:      true,
		})
	}

	return out
}

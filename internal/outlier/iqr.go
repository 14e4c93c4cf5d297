package outlier

// DetectIQR flags values outside [Q1 - mult*IQR, Q3 + mult*IQR], using
// linear-interpolation percentiles over the sorted input (spec §4.6's
// n >= 30 cross-check).
func DetectIQR(values []float64, mult float64) []Result {
	n := len(values)
	if n < 4 {
		return nil
	}
	sorted := sortedCopy(values)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	if iqr <= 0 {
		return nil
	}
	lower := q1 - mult*iqr
	upper := q3 + mult*iqr

	var out []Result
	for i, v := range values {
		if v >= lower && v <= upper {
			continue
		}
		dist := 0.0
		if v < lower {
			dist = lower - v
		} else {
			dist = v - upper
		}
		ratio := dist / iqr
		out = append(out, Result{
			Index:          i,
			Value:          v,
			TestStatistic:  dist / iqr,
			DeviationScore: clampDeviation(ratio / 2),
			Significance:   significanceFromRatio(1 + ratio),
			Method:         MethodIQR,
			IsOutlier:      true,
		})
	}
	return out
}

func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

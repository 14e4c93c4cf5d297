package outlier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectPrimaryMethod_Thresholds(t *testing.T) {
	d := New()
	require.Equal(t, MethodZScore, d.SelectPrimaryMethod(30))
	require.Equal(t, MethodZScore, d.SelectPrimaryMethod(100))
	require.Equal(t, MethodESD, d.SelectPrimaryMethod(25))
	require.Equal(t, MethodESD, d.SelectPrimaryMethod(29))
	require.Equal(t, MethodGrubbs, d.SelectPrimaryMethod(10))
	require.Equal(t, MethodGrubbs, d.SelectPrimaryMethod(24))
	require.Equal(t, MethodRuleBased, d.SelectPrimaryMethod(5))
}

func TestDetect_ClearOutlierAmongSteadyValues(t *testing.T) {
	d := New()
	values := make([]float64, 50)
	for i := range values {
		values[i] = 0.9
	}
	values[0] = 0.01

	results := d.Detect(values)
	require.NotEmpty(t, results)

	found := false
	for _, r := range results {
		if r.Index == 0 {
			found = true
		}
	}
	require.True(t, found, "the planted outlier at index 0 should be detected")
}

func TestDetectRules_ZeroConfidenceAlwaysOutlier(t *testing.T) {
	results := DetectRules([]float64{0.9, 0.0, 0.8}, []Rule{ZeroConfidenceRule()})
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].Index)
	require.Equal(t, SignificanceHigh, results[0].Significance)
}

func TestDetectIQR_FlagsValuesOutsideFences(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 100}
	results := DetectIQR(values, 1.5)
	require.NotEmpty(t, results)
	require.Equal(t, 9, results[len(results)-1].Index)
}

func TestDetectMAD_RobustToOutlierItself(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 500}
	results := DetectMAD(values, 3.5)
	require.NotEmpty(t, results)
	require.Equal(t, 9, results[0].Index)
}

func TestBelowMinSampleSize_OnlyRuleBased(t *testing.T) {
	d := New()
	values := []float64{0.9, 0.8, 0.0}
	results := d.Detect(values)
	for _, r := range results {
		require.Equal(t, MethodRuleBased, r.Method)
	}
}

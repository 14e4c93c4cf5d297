package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/parser"
)

func TestRegistry_ByLanguageFiltersOnEmptyMeansAll(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewPerformanceDetector()))
	require.Len(t, r.ByLanguage("go"), 1)
	require.Len(t, r.ByLanguage("ruby"), 1)
}

func TestRegistry_RegisterRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewPerformanceDetector()))
	require.Error(t, r.Register(NewPerformanceDetector()))
}

func TestDefaultRegistry_HasBuiltinDetectors(t *testing.T) {
	require.GreaterOrEqual(t, DefaultRegistry.Count(), 3)
}

func TestPerformanceDetector_FlagsRepeatedDBCallsAsN1(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "repo.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "loadAll", StartLine: 1, EndLine: 10},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "Find", Line: 3},
			{CalleeName: "query", Line: 5},
		},
	}

	matches, err := NewPerformanceDetector().Detect(context.Background(), rec)
	require.NoError(t, err)

	var found bool
	for _, m := range matches {
		if m.PatternID == "PERF-N1-001" {
			found = true
		}
	}
	require.True(t, found, "expected PERF-N1-001 among %+v", matches)
}

func TestPerformanceDetector_FlagsAsyncWithoutAwait(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "handler.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "handle", StartLine: 1, EndLine: 5, Async: true},
		},
	}

	matches, err := NewPerformanceDetector().Detect(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "PERF-ASYNC-003", matches[0].PatternID)
}

func TestPerformanceDetector_FlagsUnboundedAllocation(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "x.go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "Clone", Line: 9},
		},
	}

	matches, err := NewPerformanceDetector().Detect(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "PERF-ALLOC-002", matches[0].PatternID)
}

func TestTestingDetector_FlagsFrameworkMockAndAssertionCalls(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "x_test.go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "describe", Line: 1},
			{CalleeName: "jest.fn", Line: 2, Receiver: "jest"},
			{CalleeName: "toBe", Line: 3},
		},
	}

	matches, err := NewTestingDetector().Detect(context.Background(), rec)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, m := range matches {
		ids[m.PatternID] = true
	}
	require.True(t, ids["TEST-FRAMEWORK-001"])
	require.True(t, ids["TEST-ASSERT-001"])
}

func TestTestingDetector_FlagsTestFunctionWithNoAssertion(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "svc_test.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "TestSomething", StartLine: 1, EndLine: 4},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "setup", Line: 2},
		},
	}

	matches, err := NewTestingDetector().Detect(context.Background(), rec)
	require.NoError(t, err)

	var noAssert bool
	for _, m := range matches {
		if m.PatternID == "TEST-NOASSERT-002" {
			noAssert = true
		}
	}
	require.True(t, noAssert, "expected TEST-NOASSERT-002 among %+v", matches)
}

func TestTestingDetector_SuppressesNoAssertFlagWhenAssertionPresent(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "svc_test.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "TestSomething", StartLine: 1, EndLine: 4},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "assertEqual", Line: 2},
		},
	}

	matches, err := NewTestingDetector().Detect(context.Background(), rec)
	require.NoError(t, err)
	for _, m := range matches {
		require.NotEqual(t, "TEST-NOASSERT-002", m.PatternID)
	}
}

func TestTestingDetector_FlagsSkipMarkers(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "x_test.go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "skip", Line: 1},
		},
	}

	matches, err := NewTestingDetector().Detect(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "TEST-SKIP-001", matches[0].PatternID)
}

func TestSecurityDetector_TranslatesUnsanitizedFlowToMatch(t *testing.T) {
	rec := &parser.StructuralRecord{
		File: "handler.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "handler", StartLine: 1, EndLine: 10, Params: []string{"req.query"}},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 5, Column: 2},
		},
	}

	matches, err := NewSecurityDetector(nil).Detect(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, CategorySecurity, matches[0].Category)
	require.Equal(t, "SEC-CWE-89", matches[0].PatternID)
	require.Equal(t, []string{"CWE-89"}, matches[0].CWEIDs)
	require.Equal(t, "A03:2021-Injection", matches[0].OWASPCategory)
}

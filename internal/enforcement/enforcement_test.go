package enforcement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate_SecurityCWE_IsAlwaysError(t *testing.T) {
	e := NewEvaluator(nil)
	input := RulesInput{
		Patterns: []PatternInfo{
			{
				PatternID: "sql-concat",
				Category:  "security",
				CWEIDs:    []string{"CWE-89"},
				Outliers: []OutlierLocation{
					{File: "handler.go", Line: 10, Message: "unparameterized query", DeviationScore: 1.0},
				},
			},
		},
	}

	violations := e.Evaluate(input)
	require.Len(t, violations, 1)
	require.Equal(t, SeverityError, violations[0].Severity)
	require.Equal(t, "CWE-89", violations[0].CWEID)
	require.Equal(t, "security/sql-concat", violations[0].RuleID)
}

func TestEvaluate_StyleCategory_LowDeviationIsInfo(t *testing.T) {
	e := NewEvaluator(nil)
	input := RulesInput{
		Patterns: []PatternInfo{
			{
				PatternID: "camel-case",
				Category:  "naming",
				Outliers: []OutlierLocation{
					{File: "util.go", Line: 4, DeviationScore: 1.5},
				},
			},
		},
	}

	violations := e.Evaluate(input)
	require.Len(t, violations, 1)
	require.Equal(t, SeverityInfo, violations[0].Severity)
	require.NotNil(t, violations[0].QuickFix)
	require.Equal(t, StrategyRename, violations[0].QuickFix.Strategy)
}

func TestEvaluate_DedupesSameFileLineRule_KeepsHighestSeverity(t *testing.T) {
	e := NewEvaluator(nil)
	input := RulesInput{
		Patterns: []PatternInfo{
			{
				PatternID: "p",
				Category:  "naming",
				Outliers: []OutlierLocation{
					{File: "util.go", Line: 4, DeviationScore: 1.0},
					{File: "util.go", Line: 4, DeviationScore: 5.0},
				},
			},
		},
	}

	violations := e.Evaluate(input)
	require.Len(t, violations, 1)
	require.Equal(t, SeverityWarning, violations[0].Severity)
}

func TestEvaluate_InlineSuppression_MarksSuppressedNotDropped(t *testing.T) {
	e := NewEvaluator(nil)
	sourceLines := map[string][]string{
		"handler.go": {
			"x := userInput()",
			"// drift-ignore security/sql-concat",
			"db.Query(x)",
		},
	}
	input := RulesInput{
		Patterns: []PatternInfo{
			{
				PatternID: "sql-concat",
				Category:  "security",
				CWEIDs:    []string{"CWE-89"},
				Outliers: []OutlierLocation{
					{File: "handler.go", Line: 3, Message: "tainted query"},
				},
			},
		},
		SourceLines: sourceLines,
	}

	violations := e.Evaluate(input)
	require.Len(t, violations, 1)
	require.True(t, violations[0].Suppressed)
}

func TestEvaluate_PathGlobSuppression(t *testing.T) {
	e := NewEvaluator([]string{"**/generated/**"})
	input := RulesInput{
		Patterns: []PatternInfo{
			{
				PatternID: "p",
				Category:  "naming",
				Outliers: []OutlierLocation{
					{File: "src/generated/models.go", Line: 1},
				},
			},
		},
	}

	violations := e.Evaluate(input)
	require.Len(t, violations, 1)
	require.True(t, violations[0].Suppressed)
}

func TestSuppressionChecker_BlanketAndScopedDirectives(t *testing.T) {
	c := NewChecker(nil)
	lines := map[string][]string{
		"a.go": {
			"// drift-ignore",
			"dangerousCall()",
			"// drift-ignore security/x",
			"otherCall()",
			"normalCall()",
		},
	}

	require.True(t, c.IsSuppressed("a.go", 2, "anything", lines))
	require.True(t, c.IsSuppressed("a.go", 4, "security/x", lines))
	require.False(t, c.IsSuppressed("a.go", 4, "other/rule", lines))
	require.False(t, c.IsSuppressed("a.go", 5, "rule", lines))
}

func TestExtractSuppressions_ParsesRuleList(t *testing.T) {
	lines := []string{"foo()", "// drift-ignore security/a, naming/b", "bar()"}
	directives := ExtractSuppressions("a.go", lines)
	require.Len(t, directives, 1)
	require.Equal(t, []string{"security/a", "naming/b"}, directives[0].RuleIDs)
	require.Equal(t, 3, directives[0].AppliesToLine)
}

func TestGate_FailsWhenOffendingCountExceedsMax(t *testing.T) {
	gate := Gate{ID: GateSecurityBoundaries, Name: "security boundaries", MinSeverity: SeverityWarning, MaxAllowed: 0}
	violations := []Violation{
		{Severity: SeverityError},
		{Severity: SeverityInfo},
	}

	result := gate.Evaluate(violations)
	require.Equal(t, GateStatusFailed, result.Status)
	require.False(t, result.Passed)
	require.Len(t, result.Violations, 1)
}

func TestGate_PassesWhenWithinThreshold(t *testing.T) {
	gate := Gate{ID: GateTestCoverage, Name: "test coverage", MinSeverity: SeverityError, MaxAllowed: 5}
	violations := []Violation{{Severity: SeverityWarning}}

	result := gate.Evaluate(violations)
	require.Equal(t, GateStatusPassed, result.Status)
	require.True(t, result.Passed)
}

func TestGate_IgnoresSuppressedViolations(t *testing.T) {
	gate := Gate{ID: GateRegression, Name: "regression", MinSeverity: SeverityInfo, MaxAllowed: 0}
	violations := []Violation{{Severity: SeverityError, Suppressed: true}}

	result := gate.Evaluate(violations)
	require.True(t, result.Passed)
}

func TestDiff_DropsUnchangedSurfacesNew(t *testing.T) {
	previous := []Violation{{RuleID: "security/a", File: "x.go", Line: 1}}
	current := []Violation{
		{RuleID: "security/a", File: "x.go", Line: 1},
		{RuleID: "security/b", File: "x.go", Line: 2},
	}

	fresh := Diff(previous, current)
	require.Len(t, fresh, 1)
	require.Equal(t, "security/b", fresh[0].RuleID)
	require.True(t, fresh[0].IsNew)
}

func TestNewAuditSnapshot_CountsBySeverityExcludingSuppressed(t *testing.T) {
	violations := []Violation{
		{Severity: SeverityError},
		{Severity: SeverityError, Suppressed: true},
		{Severity: SeverityWarning},
	}
	snap := NewAuditSnapshot(1000, violations, nil)
	require.Equal(t, 1, snap.ViolationCountBySeverity[SeverityError])
	require.Equal(t, 1, snap.ViolationCountBySeverity[SeverityWarning])
}

// Package enforcement evaluates conventions and aggregated patterns
// against configurable rules, applies suppression, runs named quality
// gates, and persists point-in-time audit snapshots (spec §3.2/§4.10
// supplement).
package enforcement

// Severity ranks a violation's importance. Rank order, lowest to
// highest: Info, Warning, Error.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// Rank returns an integer ordering for comparing severities.
func (s Severity) Rank() int { return severityRank[s] }

// QuickFixStrategy is one of the fix strategies a rule may suggest.
type QuickFixStrategy string

const (
	StrategyRename            QuickFixStrategy = "rename"
	StrategyWrapInTryCatch    QuickFixStrategy = "wrap_in_try_catch"
	StrategyAddImport         QuickFixStrategy = "add_import"
	StrategyAddTypeAnnotation QuickFixStrategy = "add_type_annotation"
	StrategyAddDocumentation  QuickFixStrategy = "add_documentation"
	StrategyAddTest           QuickFixStrategy = "add_test"
	StrategyExtractFunction   QuickFixStrategy = "extract_function"
)

// QuickFix is a suggested remediation attached to a violation.
type QuickFix struct {
	Strategy    QuickFixStrategy
	Description string
	Replacement string // empty when the strategy has no canned replacement
}

// Violation is one rule failure at a specific location (spec §3.2).
type Violation struct {
	ID             string
	File           string
	Line           int
	Column         int
	Severity       Severity
	PatternID      string
	RuleID         string
	Message        string
	QuickFix       *QuickFix
	CWEID          string
	OWASPCategory  string
	Suppressed     bool
	IsNew          bool
}

// OutlierLocation is one outlier occurrence belonging to a pattern,
// the unit the evaluator maps to a violation.
type OutlierLocation struct {
	File           string
	Line           int
	Column         int
	Message        string
	DeviationScore float64
}

// PatternInfo is the per-pattern input the evaluator consumes: enough
// of an aggregated pattern's shape to assign severity and a quick fix,
// plus the outlier locations that became candidate violations.
type PatternInfo struct {
	PatternID       string
	Category        string
	CWEIDs          []string
	OWASPCategories []string
	Outliers        []OutlierLocation
}

// RulesInput bundles the patterns to evaluate with the source line
// tables suppression checks read from.
type RulesInput struct {
	Patterns    []PatternInfo
	SourceLines map[string][]string // file -> lines, 0-indexed
}

// GateID names one of the built-in quality gates.
type GateID string

const (
	GatePatternCompliance       GateID = "pattern-compliance"
	GateConstraintVerification  GateID = "constraint-verification"
	GateSecurityBoundaries      GateID = "security-boundaries"
	GateTestCoverage            GateID = "test-coverage"
	GateErrorHandling           GateID = "error-handling"
	GateRegression              GateID = "regression"
)

// AllGateIDs lists the 6 built-in gate identifiers.
func AllGateIDs() []GateID {
	return []GateID{
		GatePatternCompliance,
		GateConstraintVerification,
		GateSecurityBoundaries,
		GateTestCoverage,
		GateErrorHandling,
		GateRegression,
	}
}

// GateStatus is a gate's execution outcome.
type GateStatus string

const (
	GateStatusPassed  GateStatus = "passed"
	GateStatusFailed  GateStatus = "failed"
	GateStatusWarned  GateStatus = "warned"
	GateStatusSkipped GateStatus = "skipped"
	GateStatusErrored GateStatus = "errored"
)

// GateResult is the outcome of evaluating one gate against a violation
// set.
type GateResult struct {
	GateID     GateID
	Status     GateStatus
	Passed     bool
	Score      float64
	Summary    string
	Violations []Violation
	Warnings   []string
	Error      string
}

// PassResult builds a passing gate result.
func PassResult(id GateID, score float64, summary string) GateResult {
	return GateResult{GateID: id, Status: GateStatusPassed, Passed: true, Score: score, Summary: summary}
}

// FailResult builds a failing gate result carrying the violations that
// caused the failure.
func FailResult(id GateID, score float64, summary string, violations []Violation) GateResult {
	return GateResult{GateID: id, Status: GateStatusFailed, Passed: false, Score: score, Summary: summary, Violations: violations}
}

// WarnResult builds a result that passes but carries warnings.
func WarnResult(id GateID, score float64, summary string, warnings []string) GateResult {
	return GateResult{GateID: id, Status: GateStatusWarned, Passed: true, Score: score, Summary: summary, Warnings: warnings}
}

// SkippedResult builds a result for a gate that did not run.
func SkippedResult(id GateID, reason string) GateResult {
	return GateResult{GateID: id, Status: GateStatusSkipped, Passed: true, Summary: reason}
}

// ErroredResult builds a result for a gate that failed to execute.
func ErroredResult(id GateID, err string) GateResult {
	return GateResult{GateID: id, Status: GateStatusErrored, Passed: false, Summary: "gate errored: " + err, Error: err}
}

// Gate is a named threshold check over a violation set (spec §3.2
// "named threshold check... producing a pass/fail GateResult").
type Gate struct {
	ID           GateID
	Name         string
	MinSeverity  Severity // violations at or above this severity count against the gate
	MaxAllowed   int      // gate fails once the qualifying count exceeds this
}

// Evaluate counts violations at or above MinSeverity and fails the
// gate when that count exceeds MaxAllowed.
func (g Gate) Evaluate(violations []Violation) GateResult {
	var offending []Violation
	for _, v := range violations {
		if v.Suppressed {
			continue
		}
		if v.Severity.Rank() >= g.MinSeverity.Rank() {
			offending = append(offending, v)
		}
	}

	if len(offending) > g.MaxAllowed {
		summary := gateFailSummary(g, len(offending))
		return FailResult(g.ID, gateScore(len(offending), g.MaxAllowed), summary, offending)
	}
	return PassResult(g.ID, 1.0, gatePassSummary(g))
}

func gateFailSummary(g Gate, count int) string {
	return g.Name + ": " + itoa(count) + " violations at or above " + string(g.MinSeverity)
}

func gatePassSummary(g Gate) string {
	return g.Name + ": within threshold"
}

func gateScore(count, maxAllowed int) float64 {
	if count == 0 {
		return 1.0
	}
	allowed := maxAllowed
	if allowed < 0 {
		allowed = 0
	}
	score := 1.0 - float64(count-allowed)/float64(count+1)
	if score < 0 {
		return 0
	}
	return score
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// AuditSnapshot is a point-in-time enforcement summary (spec §3.2
// "Audit").
type AuditSnapshot struct {
	Timestamp              int64
	ViolationCountBySeverity map[Severity]int
	GateResults             []GateResult
}

// NewAuditSnapshot summarizes a violation set and gate run at the
// given unix-second timestamp.
func NewAuditSnapshot(timestamp int64, violations []Violation, gateResults []GateResult) AuditSnapshot {
	counts := map[Severity]int{}
	for _, v := range violations {
		if v.Suppressed {
			continue
		}
		counts[v.Severity]++
	}
	return AuditSnapshot{Timestamp: timestamp, ViolationCountBySeverity: counts, GateResults: gateResults}
}

package enforcement

import (
	"fmt"
	"sort"
)

// securityCWEIDs are the CWE identifiers the evaluator always treats
// as Error severity regardless of category (spec §3.2; ported from
// evaluator.rs's numeric CWE-89/79/78/22/94/502/611/918/327/798 list,
// rendered here as the taint engine's "CWE-NNN" string form).
var securityCWEIDs = map[string]bool{
	"CWE-89": true, "CWE-79": true, "CWE-78": true, "CWE-22": true,
	"CWE-94": true, "CWE-502": true, "CWE-611": true, "CWE-918": true,
	"CWE-327": true, "CWE-798": true,
}

// Evaluator maps detected patterns and their outliers to violations,
// assigning severity, a quick fix, and a suppression check to each
// (spec §3.2 "Evaluate(rules, conventions, patterns) -> []Violation").
type Evaluator struct {
	suppression *Checker
}

// NewEvaluator builds an evaluator that suppresses violations matching
// any of pathGlobs or an inline drift-ignore comment.
func NewEvaluator(pathGlobs []string) *Evaluator {
	return &Evaluator{suppression: NewChecker(pathGlobs)}
}

// Evaluate produces one violation per pattern outlier, deduplicated so
// that at most one violation survives per file:line:rule.
func (e *Evaluator) Evaluate(input RulesInput) []Violation {
	var violations []Violation

	for _, p := range input.Patterns {
		ruleID := fmt.Sprintf("%s/%s", p.Category, p.PatternID)

		for _, outlier := range p.Outliers {
			severity := assignSeverity(p.Category, p.CWEIDs, outlier.DeviationScore)
			id := fmt.Sprintf("%s-%s-%d", ruleID, outlier.File, outlier.Line)

			var cweID, owaspCategory string
			if len(p.CWEIDs) > 0 {
				cweID = p.CWEIDs[0]
			}
			if len(p.OWASPCategories) > 0 {
				owaspCategory = p.OWASPCategories[0]
			}

			suppressed := e.suppression.IsSuppressed(outlier.File, outlier.Line, ruleID, input.SourceLines)

			violations = append(violations, Violation{
				ID:            id,
				File:          outlier.File,
				Line:          outlier.Line,
				Column:        outlier.Column,
				Severity:      severity,
				PatternID:     p.PatternID,
				RuleID:        ruleID,
				Message:       outlier.Message,
				QuickFix:      suggestQuickFix(p.Category, p.PatternID),
				CWEID:         cweID,
				OWASPCategory: owaspCategory,
				Suppressed:    suppressed,
			})
		}
	}

	return deduplicate(violations)
}

// assignSeverity mirrors evaluator.rs's assign_severity: a recognized
// security CWE always escalates to Error; otherwise severity follows
// the pattern's category, with style-ish categories downgraded to Info
// unless the deviation is large.
func assignSeverity(category string, cweIDs []string, deviationScore float64) Severity {
	if len(cweIDs) > 0 {
		if securityCWEIDs[cweIDs[0]] {
			return SeverityError
		}
		return SeverityWarning
	}

	switch category {
	case "security", "taint", "crypto":
		return SeverityError
	case "error_handling", "constraint", "boundary":
		return SeverityWarning
	case "naming", "convention", "style":
		if deviationScore > 3.0 {
			return SeverityWarning
		}
		return SeverityInfo
	case "documentation":
		return SeverityInfo
	default:
		if deviationScore > 3.0 {
			return SeverityWarning
		}
		return SeverityInfo
	}
}

// deduplicate collapses violations sharing file:line:rule_id, keeping
// the highest-severity instance (spec §3.2 suppression note: silenced
// is tracked separately from absent, so suppressed violations are
// still deduplicated, not dropped here).
func deduplicate(violations []Violation) []Violation {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Severity.Rank() > b.Severity.Rank()
	})

	seen := make(map[string]bool)
	out := violations[:0]
	for _, v := range violations {
		key := fmt.Sprintf("%s:%d:%s", v.File, v.Line, v.RuleID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

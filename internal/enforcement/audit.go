package enforcement

import "fmt"

// Diff computes the violations new in current relative to previous: a
// violation is considered unchanged, and dropped from the result, when
// a prior violation shares its rule ID and location (file:line). This
// keeps repeated audit() calls surfacing only deltas, the role
// deduplication.rs's Jaccard-over-location-sets comparison plays for
// pattern duplicates, adapted here to compare one audit's violations
// against the last (spec §3.2 "Audit").
func Diff(previous, current []Violation) []Violation {
	seen := make(map[string]bool, len(previous))
	for _, v := range previous {
		seen[violationKey(v)] = true
	}

	var fresh []Violation
	for _, v := range current {
		v.IsNew = !seen[violationKey(v)]
		if v.IsNew {
			fresh = append(fresh, v)
		}
	}
	return fresh
}

func violationKey(v Violation) string {
	return fmt.Sprintf("%s:%s:%d", v.RuleID, v.File, v.Line)
}

// HealthTrend is one row of the health_trends series: a snapshot's
// aggregate violation counts alongside the count of violations newly
// introduced since the prior snapshot.
type HealthTrend struct {
	Timestamp    int64
	TotalByRank  [3]int // indexed by Severity.Rank(): info, warning, error
	NewViolations int
}

// NewHealthTrend derives one trend row from a snapshot and the count
// of violations Diff found new against the prior snapshot.
func NewHealthTrend(snapshot AuditSnapshot, newCount int) HealthTrend {
	var byRank [3]int
	for sev, count := range snapshot.ViolationCountBySeverity {
		byRank[sev.Rank()] += count
	}
	return HealthTrend{Timestamp: snapshot.Timestamp, TotalByRank: byRank, NewViolations: newCount}
}

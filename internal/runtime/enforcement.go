package runtime

import (
	"context"
	"time"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/enforcement"
	"github.com/driftlang/drift/internal/storage"
)

// Violations evaluates every stored outlier against the configured
// rules and suppression directives, persists the resulting set, and
// returns it (spec §3.2 "Evaluate", §6 "violations(root)").
func (r *Runtime) Violations(ctx context.Context, sourceLines map[string][]string) ([]enforcement.Violation, error) {
	input, err := r.rulesInput(ctx)
	if err != nil {
		return nil, err
	}
	input.SourceLines = sourceLines
	violations := r.evaluator.Evaluate(input)

	if err := r.store.Enqueue(ctx, violationRows(violations)); err != nil {
		return nil, err
	}
	return violations, nil
}

func violationRows(violations []enforcement.Violation) storage.ReplaceViolations {
	now := time.Now().Unix()
	rows := make(storage.ReplaceViolations, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, storage.ViolationRow{
			ID: v.ID, File: v.File, Line: v.Line, Column: v.Column, Severity: string(v.Severity),
			PatternID: v.PatternID, RuleID: v.RuleID, Message: v.Message, CWEID: v.CWEID,
			OWASP: v.OWASPCategory, Suppressed: v.Suppressed, IsNew: v.IsNew, RecordedAt: now,
		})
	}
	return rows
}

// Gates runs every configured gate against the current violation set
// (spec §3.2 "named threshold check", §6 "gates(root)").
func (r *Runtime) Gates(ctx context.Context, sourceLines map[string][]string) ([]enforcement.GateResult, error) {
	violations, err := r.Violations(ctx, sourceLines)
	if err != nil {
		return nil, err
	}
	results := make([]enforcement.GateResult, 0, len(r.gates))
	for _, g := range r.gates {
		results = append(results, g.Evaluate(violations))
	}

	now := time.Now().Unix()
	rows := make(storage.InsertGateResults, 0, len(results))
	for _, res := range results {
		rows = append(rows, storage.GateResultRow{
			GateID: string(res.GateID), Status: string(res.Status), Passed: res.Passed,
			Score: res.Score, Summary: res.Summary, RecordedAt: now,
		})
	}
	if err := r.store.Enqueue(ctx, rows); err != nil {
		return nil, err
	}

	return results, nil
}

// Audit builds a point-in-time AuditSnapshot from the current
// violations and gate results, diffs it against the previous snapshot
// to flag new violations, and remembers it as the new "previous" for
// the next call (spec §3.2 "Audit", §6 "audit(root)").
func (r *Runtime) Audit(ctx context.Context, timestamp int64, sourceLines map[string][]string) (enforcement.AuditSnapshot, []enforcement.Violation, error) {
	violations, err := r.Violations(ctx, sourceLines)
	if err != nil {
		return enforcement.AuditSnapshot{}, nil, err
	}
	gateResults, err := r.Gates(ctx, sourceLines)
	if err != nil {
		return enforcement.AuditSnapshot{}, nil, err
	}

	r.auditMu.Lock()
	defer r.auditMu.Unlock()

	var fresh []enforcement.Violation
	if r.lastAudit.Load() != nil {
		fresh = enforcement.Diff(r.lastViolations, violations)
	} else {
		fresh = violations
	}

	snapshot := enforcement.NewAuditSnapshot(timestamp, violations, gateResults)
	r.lastAudit.Store(&snapshot)
	r.lastViolations = violations

	trend := enforcement.NewHealthTrend(snapshot, len(fresh))
	if err := r.store.Enqueue(ctx, storage.InsertAuditSnapshot{
		Timestamp:    snapshot.Timestamp,
		InfoCount:    trend.TotalByRank[enforcement.SeverityInfo.Rank()],
		WarningCount: trend.TotalByRank[enforcement.SeverityWarning.Rank()],
		ErrorCount:   trend.TotalByRank[enforcement.SeverityError.Rank()],
	}); err != nil {
		return enforcement.AuditSnapshot{}, nil, err
	}
	if err := r.store.Enqueue(ctx, storage.InsertHealthTrend{
		Timestamp:     trend.Timestamp,
		InfoCount:     trend.TotalByRank[enforcement.SeverityInfo.Rank()],
		WarningCount:  trend.TotalByRank[enforcement.SeverityWarning.Rank()],
		ErrorCount:    trend.TotalByRank[enforcement.SeverityError.Rank()],
		NewViolations: trend.NewViolations,
	}); err != nil {
		return enforcement.AuditSnapshot{}, nil, err
	}

	return snapshot, fresh, nil
}

// Check is the coarse pass/fail summary over Gates (spec §6
// "check(root)"): true only when every gate passed.
func (r *Runtime) Check(ctx context.Context, sourceLines map[string][]string) (bool, []enforcement.GateResult, error) {
	results, err := r.Gates(ctx, sourceLines)
	if err != nil {
		return false, nil, err
	}
	ok := true
	for _, res := range results {
		if !res.Passed {
			ok = false
		}
	}
	return ok, results, nil
}

// rulesInput groups stored detections by pattern and attaches each
// pattern's outlier locations, the shape enforcement.Evaluate expects.
func (r *Runtime) rulesInput(ctx context.Context) (enforcement.RulesInput, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT o.pattern_id, d.category, d.cwe_ids, d.owasp, o.file, o.line, d.column_num, o.deviation_score
		FROM outliers o
		JOIN detections d ON d.pattern_id = o.pattern_id AND d.file = o.file AND d.line = o.line
	`)
	if err != nil {
		return enforcement.RulesInput{}, direrr.NewStorageError("query violations input", err)
	}
	defer rows.Close()

	byPattern := map[string]*enforcement.PatternInfo{}
	var order []string

	for rows.Next() {
		var patternID, category, cweIDs, owasp, file string
		var line, column int
		var deviation float64
		if err := rows.Scan(&patternID, &category, &cweIDs, &owasp, &file, &line, &column, &deviation); err != nil {
			return enforcement.RulesInput{}, direrr.NewStorageError("scan violations input", err)
		}

		pi, ok := byPattern[patternID]
		if !ok {
			pi = &enforcement.PatternInfo{PatternID: patternID, Category: category}
			if cweIDs != "" {
				pi.CWEIDs = []string{cweIDs}
			}
			if owasp != "" {
				pi.OWASPCategories = []string{owasp}
			}
			byPattern[patternID] = pi
			order = append(order, patternID)
		}
		pi.Outliers = append(pi.Outliers, enforcement.OutlierLocation{
			File: file, Line: line, Column: column, DeviationScore: deviation,
		})
	}
	if err := rows.Err(); err != nil {
		return enforcement.RulesInput{}, direrr.NewStorageError("iterate violations input", err)
	}

	input := enforcement.RulesInput{}
	for _, id := range order {
		input.Patterns = append(input.Patterns, *byPattern[id])
	}
	return input, nil
}

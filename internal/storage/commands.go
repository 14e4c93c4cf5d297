package storage

import (
	"context"
	"database/sql"
)

// Command is a single write operation the batch writer can apply
// inside a shared transaction (spec §4.9's batch writer, grounded on
// drift-storage's BatchCommand enum).
type Command interface {
	apply(ctx context.Context, tx *sql.Tx) error
}

// FileMetadataRow upserts one file's scan metadata.
type FileMetadataRow struct {
	Path           string
	Language       string
	FileSize       int64
	ContentHash    uint64
	MTimeSecs      int64
	MTimeNanos     int64
	LastScannedAt  int64
	ScanDurationUs int64
}

// UpsertFileMetadata batches FileMetadataRow upserts.
type UpsertFileMetadata []FileMetadataRow

func (rows UpsertFileMetadata) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_metadata
			(path, language, file_size, content_hash, mtime_secs, mtime_nanos, last_scanned_at, scan_duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language, file_size=excluded.file_size, content_hash=excluded.content_hash,
			mtime_secs=excluded.mtime_secs, mtime_nanos=excluded.mtime_nanos,
			last_scanned_at=excluded.last_scanned_at, scan_duration_us=excluded.scan_duration_us`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Path, r.Language, r.FileSize, r.ContentHash,
			r.MTimeSecs, r.MTimeNanos, r.LastScannedAt, r.ScanDurationUs); err != nil {
			return err
		}
	}
	return nil
}

// DeleteFileMetadata removes file_metadata rows for paths no longer
// present on disk.
type DeleteFileMetadata []string

func (paths DeleteFileMetadata) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `DELETE FROM file_metadata WHERE path = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range paths {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// ParseCacheRow caches one content-fingerprint-keyed parse result.
type ParseCacheRow struct {
	ContentHash     uint64
	Language        string
	ParseResultJSON string
	CreatedAt       int64
}

// InsertParseCache batches ParseCacheRow upserts.
type InsertParseCache []ParseCacheRow

func (rows InsertParseCache) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parse_cache (content_hash, language, parse_result_json, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			language=excluded.language, parse_result_json=excluded.parse_result_json, created_at=excluded.created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ContentHash, r.Language, r.ParseResultJSON, r.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// FunctionRow is one parsed function/method, denormalized for storage.
type FunctionRow struct {
	File           string
	Name           string
	QualifiedName  string
	Language       string
	Line           int
	EndLine        int
	ParameterCount int
	ReturnType     string
	IsExported     bool
	IsAsync        bool
	BodyHash       uint64
	SignatureHash  uint64
}

// InsertFunctions batches FunctionRow upserts.
type InsertFunctions []FunctionRow

func (rows InsertFunctions) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO functions
			(file, name, qualified_name, language, line, end_line, parameter_count,
			 return_type, is_exported, is_async, body_hash, signature_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file, name, line) DO UPDATE SET
			qualified_name=excluded.qualified_name, language=excluded.language, end_line=excluded.end_line,
			parameter_count=excluded.parameter_count, return_type=excluded.return_type,
			is_exported=excluded.is_exported, is_async=excluded.is_async,
			body_hash=excluded.body_hash, signature_hash=excluded.signature_hash`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.File, r.Name, r.QualifiedName, r.Language, r.Line, r.EndLine,
			r.ParameterCount, r.ReturnType, r.IsExported, r.IsAsync, r.BodyHash, r.SignatureHash); err != nil {
			return err
		}
	}
	return nil
}

// CallEdgeRow is one resolved call graph edge.
type CallEdgeRow struct {
	CallerKey    string
	CalleeKey    string
	Resolution   string
	Confidence   float64
	CallSiteLine int
}

// InsertCallEdges batches CallEdgeRow upserts.
type InsertCallEdges []CallEdgeRow

func (rows InsertCallEdges) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO call_edges (caller_key, callee_key, resolution, confidence, call_site_line)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(caller_key, callee_key, call_site_line) DO UPDATE SET
			resolution=excluded.resolution, confidence=excluded.confidence`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.CallerKey, r.CalleeKey, r.Resolution, r.Confidence, r.CallSiteLine); err != nil {
			return err
		}
	}
	return nil
}

// DetectionRow is one pattern.Match, denormalized for storage.
type DetectionRow struct {
	File            string
	Line            int
	Column          int
	PatternID       string
	Category        string
	Confidence      float64
	DetectionMethod string
	CWEIDs          string // JSON array
	OWASP           string
	MatchedText     string
}

// InsertDetections batches DetectionRow inserts (append-only history).
type InsertDetections []DetectionRow

func (rows InsertDetections) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detections
			(file, line, column_num, pattern_id, category, confidence, detection_method, cwe_ids, owasp, matched_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.File, r.Line, r.Column, r.PatternID, r.Category,
			r.Confidence, r.DetectionMethod, r.CWEIDs, r.OWASP, r.MatchedText); err != nil {
			return err
		}
	}
	return nil
}

// PatternConfidenceRow is one pattern's current confidence.Score.
type PatternConfidenceRow struct {
	PatternID            string
	Alpha                float64
	Beta                 float64
	PosteriorMean        float64
	CredibleIntervalLow  float64
	CredibleIntervalHigh float64
	Tier                 string
	Momentum             string
	UpdatedAt            int64
}

// InsertPatternConfidence batches PatternConfidenceRow upserts.
type InsertPatternConfidence []PatternConfidenceRow

func (rows InsertPatternConfidence) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pattern_confidence
			(pattern_id, alpha, beta, posterior_mean, credible_interval_low, credible_interval_high, tier, momentum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pattern_id) DO UPDATE SET
			alpha=excluded.alpha, beta=excluded.beta, posterior_mean=excluded.posterior_mean,
			credible_interval_low=excluded.credible_interval_low, credible_interval_high=excluded.credible_interval_high,
			tier=excluded.tier, momentum=excluded.momentum, updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PatternID, r.Alpha, r.Beta, r.PosteriorMean,
			r.CredibleIntervalLow, r.CredibleIntervalHigh, r.Tier, r.Momentum, r.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

// OutlierRow is one outlier.Result, denormalized for storage.
type OutlierRow struct {
	PatternID      string
	File           string
	Line           int
	DeviationScore float64
	Significance   string
	Method         string
}

// InsertOutliers batches OutlierRow inserts (append-only history).
type InsertOutliers []OutlierRow

func (rows InsertOutliers) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outliers (pattern_id, file, line, deviation_score, significance, method)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PatternID, r.File, r.Line, r.DeviationScore, r.Significance, r.Method); err != nil {
			return err
		}
	}
	return nil
}

// ConventionRow is one discovered convention.Convention.
type ConventionRow struct {
	PatternID       string
	Category        string
	Scope           string
	DominanceRatio  float64
	PromotionStatus string
	DiscoveredAt    int64
	LastSeen        int64
	ExpiresAt       *int64
}

// InsertConventions batches ConventionRow upserts.
type InsertConventions []ConventionRow

func (rows InsertConventions) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conventions
			(pattern_id, category, scope, dominance_ratio, promotion_status, discovered_at, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pattern_id) DO UPDATE SET
			category=excluded.category, scope=excluded.scope, dominance_ratio=excluded.dominance_ratio,
			promotion_status=excluded.promotion_status, last_seen=excluded.last_seen, expires_at=excluded.expires_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PatternID, r.Category, r.Scope, r.DominanceRatio,
			r.PromotionStatus, r.DiscoveredAt, r.LastSeen, r.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}

// CouplingMetricRow is one module's coupling.ModuleMetrics, stamped
// with when it was computed.
type CouplingMetricRow struct {
	Module       string
	Afferent     int
	Efferent     int
	Instability  float64
	Abstractness float64
	Distance     float64
	ComputedAt   int64
}

// InsertCouplingMetrics batches CouplingMetricRow upserts.
type InsertCouplingMetrics []CouplingMetricRow

func (rows InsertCouplingMetrics) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coupling_metrics (module, afferent, efferent, instability, abstractness, distance, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(module) DO UPDATE SET
			afferent=excluded.afferent, efferent=excluded.efferent, instability=excluded.instability,
			abstractness=excluded.abstractness, distance=excluded.distance, computed_at=excluded.computed_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Module, r.Afferent, r.Efferent, r.Instability,
			r.Abstractness, r.Distance, r.ComputedAt); err != nil {
			return err
		}
	}
	return nil
}

// ViolationRow is one evaluated enforcement.Violation, snapshotted at
// evaluation time.
type ViolationRow struct {
	ID          string
	File        string
	Line        int
	Column      int
	Severity    string
	PatternID   string
	RuleID      string
	Message     string
	CWEID       string
	OWASP       string
	Suppressed  bool
	IsNew       bool
	RecordedAt  int64
}

// ReplaceViolations clears the stored violation set and inserts rows,
// matching "violations as last evaluated" rather than an append-only
// history.
type ReplaceViolations []ViolationRow

func (rows ReplaceViolations) apply(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM violations`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO violations
			(id, file, line, column_num, severity, pattern_id, rule_id, message, cwe_id, owasp, suppressed, is_new, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.File, r.Line, r.Column, r.Severity, r.PatternID,
			r.RuleID, r.Message, r.CWEID, r.OWASP, r.Suppressed, r.IsNew, r.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

// UpdateViolationSuppressed flips one violation's suppressed flag, the
// persisted side effect of a dismiss or suppress feedback action. It is
// a best-effort update: the row may already be gone if a later
// ReplaceViolations ran first, in which case it affects zero rows.
type UpdateViolationSuppressed struct {
	ViolationID string
	Suppressed  bool
}

func (u UpdateViolationSuppressed) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE violations SET suppressed = ? WHERE id = ?`, u.Suppressed, u.ViolationID)
	return err
}

// GateResultRow is one gate's outcome from a single evaluation pass.
type GateResultRow struct {
	GateID     string
	Status     string
	Passed     bool
	Score      float64
	Summary    string
	RecordedAt int64
}

// InsertGateResults batches GateResultRow inserts (append-only history).
type InsertGateResults []GateResultRow

func (rows InsertGateResults) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gate_results (gate_id, status, passed, score, summary, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.GateID, r.Status, r.Passed, r.Score, r.Summary, r.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

// AuditSnapshotRow is one point-in-time violation-count snapshot.
type AuditSnapshotRow struct {
	Timestamp    int64
	InfoCount    int
	WarningCount int
	ErrorCount   int
}

// InsertAuditSnapshot appends one AuditSnapshotRow.
type InsertAuditSnapshot AuditSnapshotRow

func (r InsertAuditSnapshot) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_snapshots (timestamp, info_count, warning_count, error_count)
		VALUES (?, ?, ?, ?)`, r.Timestamp, r.InfoCount, r.WarningCount, r.ErrorCount)
	return err
}

// HealthTrendRow is one row of the health_trends series.
type HealthTrendRow struct {
	Timestamp     int64
	InfoCount     int
	WarningCount  int
	ErrorCount    int
	NewViolations int
}

// InsertHealthTrend appends one HealthTrendRow.
type InsertHealthTrend HealthTrendRow

func (r InsertHealthTrend) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO health_trends (timestamp, info_count, warning_count, error_count, new_violations)
		VALUES (?, ?, ?, ?, ?)`, r.Timestamp, r.InfoCount, r.WarningCount, r.ErrorCount, r.NewViolations)
	return err
}

// TaintFlowRow is one taint.Flow recorded during a scan.
type TaintFlowRow struct {
	SourceFile       string
	SourceLine       int
	SourceExpression string
	SinkFile         string
	SinkLine         int
	SinkExpression   string
	CWEID            string
	Confidence       float64
	IsSanitized      bool
	RecordedAt       int64
}

// InsertTaintFlows batches TaintFlowRow inserts (append-only history).
type InsertTaintFlows []TaintFlowRow

func (rows InsertTaintFlows) apply(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO taint_flows
			(source_file, source_line, source_expression, sink_file, sink_line, sink_expression,
			 cwe_id, confidence, is_sanitized, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SourceFile, r.SourceLine, r.SourceExpression,
			r.SinkFile, r.SinkLine, r.SinkExpression, r.CWEID, r.Confidence, r.IsSanitized, r.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

// FeedbackRow records one user action on a violation (dismiss, fix,
// suppress), grounded on the foreign-language bridge's violation
// feedback functions.
type FeedbackRow struct {
	ID          string
	ViolationID string
	Action      string
	Reason      string
	CreatedAt   int64
}

// InsertFeedback appends one FeedbackRow.
type InsertFeedback FeedbackRow

func (r InsertFeedback) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO feedback (id, violation_id, action, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`, r.ID, r.ViolationID, r.Action, r.Reason, r.CreatedAt)
	return err
}

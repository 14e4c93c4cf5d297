package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);
`

// migrations is an ordered list of schema migrations, applied in order
// starting from version 0. Never modify an existing entry; only append.
var migrations = []func(*sql.Tx) error{
	migrateV0FileMetadata,
	migrateV1Functions,
	migrateV2CallEdges,
	migrateV3Detections,
	migrateV4PatternConfidence,
	migrateV5Outliers,
	migrateV6Conventions,
	migrateV7Coupling,
	migrateV8Contracts,
	migrateV9Enforcement,
}

func migrateV0FileMetadata(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS file_metadata (
	path TEXT PRIMARY KEY,
	language TEXT,
	file_size INTEGER NOT NULL DEFAULT 0,
	content_hash INTEGER NOT NULL,
	mtime_secs INTEGER NOT NULL,
	mtime_nanos INTEGER NOT NULL,
	last_scanned_at INTEGER NOT NULL,
	scan_duration_us INTEGER
);
CREATE INDEX IF NOT EXISTS idx_file_metadata_language ON file_metadata(language);

CREATE TABLE IF NOT EXISTS parse_cache (
	content_hash INTEGER PRIMARY KEY,
	language TEXT NOT NULL,
	parse_result_json TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`)
	return err
}

func migrateV1Functions(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS functions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	name TEXT NOT NULL,
	qualified_name TEXT,
	language TEXT NOT NULL,
	line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	parameter_count INTEGER NOT NULL DEFAULT 0,
	return_type TEXT,
	is_exported INTEGER NOT NULL DEFAULT 0,
	is_async INTEGER NOT NULL DEFAULT 0,
	body_hash INTEGER,
	signature_hash INTEGER,
	UNIQUE(file, name, line)
);
CREATE INDEX IF NOT EXISTS idx_functions_file ON functions(file);
CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);
`)
	return err
}

func migrateV2CallEdges(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS call_edges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	caller_key TEXT NOT NULL,
	callee_key TEXT NOT NULL,
	resolution TEXT NOT NULL,
	confidence REAL NOT NULL,
	call_site_line INTEGER NOT NULL,
	UNIQUE(caller_key, callee_key, call_site_line)
);
CREATE INDEX IF NOT EXISTS idx_call_edges_caller ON call_edges(caller_key);
CREATE INDEX IF NOT EXISTS idx_call_edges_callee ON call_edges(callee_key);
`)
	return err
}

func migrateV3Detections(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	column_num INTEGER NOT NULL DEFAULT 0,
	pattern_id TEXT NOT NULL,
	category TEXT NOT NULL,
	confidence REAL NOT NULL,
	detection_method TEXT NOT NULL,
	cwe_ids TEXT,
	owasp TEXT,
	matched_text TEXT
);
CREATE INDEX IF NOT EXISTS idx_detections_pattern ON detections(pattern_id);
CREATE INDEX IF NOT EXISTS idx_detections_file ON detections(file);
CREATE INDEX IF NOT EXISTS idx_detections_category ON detections(category);
`)
	return err
}

func migrateV4PatternConfidence(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS pattern_confidence (
	pattern_id TEXT PRIMARY KEY,
	alpha REAL NOT NULL,
	beta REAL NOT NULL,
	posterior_mean REAL NOT NULL,
	credible_interval_low REAL NOT NULL,
	credible_interval_high REAL NOT NULL,
	tier TEXT NOT NULL,
	momentum TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`)
	return err
}

func migrateV5Outliers(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS outliers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern_id TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	deviation_score REAL NOT NULL,
	significance TEXT NOT NULL,
	method TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outliers_pattern ON outliers(pattern_id);
`)
	return err
}

func migrateV6Conventions(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS conventions (
	pattern_id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	scope TEXT NOT NULL,
	dominance_ratio REAL NOT NULL,
	promotion_status TEXT NOT NULL,
	discovered_at INTEGER NOT NULL,
	last_seen INTEGER NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_conventions_status ON conventions(promotion_status);
`)
	return err
}

func migrateV7Coupling(tx *sql.Tx) error {
	_, err := tx.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS coupling_metrics (
	module TEXT PRIMARY KEY,
	afferent INTEGER NOT NULL,
	efferent INTEGER NOT NULL,
	instability REAL NOT NULL,
	abstractness REAL NOT NULL,
	distance REAL NOT NULL,
	computed_at INTEGER NOT NULL
);
`)
	return err
}

// migrateV8Contracts folds in the tables internal/contracts.Store's
// CreateTables defines, so a single migration runner owns every table
// in the database instead of each package creating its own on first
// use.
func migrateV8Contracts(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS contracts (
			id TEXT PRIMARY KEY,
			method TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			endpoint_pattern TEXT,
			backend_file TEXT,
			backend_line INTEGER,
			backend_framework TEXT,
			backend_handler TEXT,
			backend_request_schema TEXT,
			backend_response_schema TEXT,
			status TEXT NOT NULL DEFAULT 'discovered',
			authority TEXT NOT NULL DEFAULT 'proposed',
			confidence REAL NOT NULL DEFAULT 0.0,
			first_seen DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contract_frontend_calls (
			id TEXT PRIMARY KEY,
			contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			line_number INTEGER NOT NULL,
			call_type TEXT,
			expected_schema TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contract_mismatches (
			id TEXT PRIMARY KEY,
			contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
			field_path TEXT NOT NULL,
			mismatch_type TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT 'warning',
			description TEXT,
			backend_type TEXT,
			frontend_type TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_endpoint ON contracts(endpoint)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_contract_calls_contract ON contract_frontend_calls(contract_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contract_mismatches_contract ON contract_mismatches(contract_id)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV9Enforcement adds the tables backing internal/enforcement's
// persisted history: violations as last evaluated, point-in-time gate
// results and audit snapshots, the health trend series they feed, taint
// flows recorded per scan, and user feedback on individual violations.
func migrateV9Enforcement(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS violations (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			column_num INTEGER NOT NULL DEFAULT 0,
			severity TEXT NOT NULL,
			pattern_id TEXT,
			rule_id TEXT NOT NULL,
			message TEXT,
			cwe_id TEXT,
			owasp TEXT,
			suppressed INTEGER NOT NULL DEFAULT 0,
			is_new INTEGER NOT NULL DEFAULT 0,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule_id)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_file ON violations(file)`,
		`CREATE TABLE IF NOT EXISTS gate_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			gate_id TEXT NOT NULL,
			status TEXT NOT NULL,
			passed INTEGER NOT NULL,
			score REAL NOT NULL,
			summary TEXT,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			info_count INTEGER NOT NULL DEFAULT 0,
			warning_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS health_trends (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			info_count INTEGER NOT NULL DEFAULT 0,
			warning_count INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			new_violations INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS taint_flows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_file TEXT NOT NULL,
			source_line INTEGER NOT NULL,
			source_expression TEXT,
			sink_file TEXT NOT NULL,
			sink_line INTEGER NOT NULL,
			sink_expression TEXT,
			cwe_id TEXT NOT NULL,
			confidence REAL NOT NULL,
			is_sanitized INTEGER NOT NULL DEFAULT 0,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_taint_flows_cwe ON taint_flows(cwe_id)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			violation_id TEXT NOT NULL,
			action TEXT NOT NULL,
			reason TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_violation ON feedback(violation_id)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(context.Background(), stmt); err != nil {
			return err
		}
	}
	return nil
}

// ensureSchema creates the schema_version table and runs pending
// migrations in order, recording each as it applies.
func ensureSchema(db *sql.DB) error {
	if _, err := db.ExecContext(context.Background(), schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	row := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for v := current + 1; v < len(migrations); v++ {
		if err := runMigration(db, v); err != nil {
			return fmt.Errorf("run migration %d: %w", v, err)
		}
	}
	return nil
}

func runMigration(db *sql.DB, version int) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := migrations[version](tx); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(context.Background(), "INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", version, now); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version, or -1
// if none have run.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(context.Background(), "SELECT COALESCE(MAX(version), -1) FROM schema_version").Scan(&version)
	return version, err
}

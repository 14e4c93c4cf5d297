package contracts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists Contracts, their frontend calls, and their mismatches
// to the engine's SQLite store (spec §4.9). It expects the tables
// CreateTables defines; callers running under internal/storage's
// migration runner should fold these statements into that runner
// instead of calling CreateTables directly.
type Store struct {
	db *sql.DB
}

// NewStore wraps an already-open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTables creates the contracts tables if they don't already
// exist. Safe to call repeatedly.
func (s *Store) CreateTables(ctx context.Context) error {
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
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("contracts: create table: %w", err)
		}
	}
	return nil
}

// SaveContract inserts or replaces a contract along with its frontend
// calls and mismatches.
func (s *Store) SaveContract(ctx context.Context, c *Contract) error {
	requestSchema, _ := json.Marshal(c.Backend.RequestSchema)
	responseSchema, _ := json.Marshal(c.Backend.ResponseSchema)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (
			id, method, endpoint, endpoint_pattern,
			backend_file, backend_line, backend_framework, backend_handler,
			backend_request_schema, backend_response_schema,
			status, authority, confidence, first_seen, last_seen, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			confidence = excluded.confidence,
			backend_response_schema = excluded.backend_response_schema,
			last_seen = excluded.last_seen,
			updated_at = excluded.updated_at
	`,
		c.ID, c.Method, c.Endpoint, c.EndpointPattern,
		c.Backend.File, c.Backend.Line, c.Backend.Framework, c.Backend.Handler,
		string(requestSchema), string(responseSchema),
		string(c.Status), c.Authority, c.Confidence, c.FirstSeen, c.LastSeen, time.Now(), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("contracts: save contract %s: %w", c.ID, err)
	}

	for i := range c.FrontendCalls {
		if err := s.saveFrontendCall(ctx, c.ID, &c.FrontendCalls[i]); err != nil {
			return err
		}
	}
	for i := range c.Mismatches {
		if err := s.saveMismatch(ctx, c.ID, &c.Mismatches[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveFrontendCall(ctx context.Context, contractID string, call *FrontendCall) error {
	expectedSchema, _ := json.Marshal(call.ExpectedSchema)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contract_frontend_calls (
			id, contract_id, file_path, line_number, call_type, expected_schema, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, call.ID, contractID, call.File, call.Line, call.CallType, string(expectedSchema), call.CreatedAt)
	if err != nil {
		return fmt.Errorf("contracts: save frontend call %s: %w", call.ID, err)
	}
	return nil
}

func (s *Store) saveMismatch(ctx context.Context, contractID string, m *FieldMismatch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO contract_mismatches (
			id, contract_id, field_path, mismatch_type, severity, description, backend_type, frontend_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, contractID, m.FieldPath, string(m.Type), string(m.Severity), m.Description, m.BackendType, m.FrontendType)
	if err != nil {
		return fmt.Errorf("contracts: save mismatch %s: %w", m.ID, err)
	}
	return nil
}

// GetContract loads a contract by ID, along with its frontend calls
// and mismatches. It returns (nil, nil) if no such contract exists.
func (s *Store) GetContract(ctx context.Context, id string) (*Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, method, endpoint, endpoint_pattern,
			backend_file, backend_line, backend_framework, backend_handler,
			backend_request_schema, backend_response_schema,
			status, authority, confidence, first_seen, last_seen
		FROM contracts WHERE id = ?
	`, id)

	c := &Contract{}
	var requestSchema, responseSchema, status string
	err := row.Scan(
		&c.ID, &c.Method, &c.Endpoint, &c.EndpointPattern,
		&c.Backend.File, &c.Backend.Line, &c.Backend.Framework, &c.Backend.Handler,
		&requestSchema, &responseSchema,
		&status, &c.Authority, &c.Confidence, &c.FirstSeen, &c.LastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("contracts: get contract %s: %w", id, err)
	}
	c.Status = ContractStatus(status)

	if requestSchema != "" {
		_ = json.Unmarshal([]byte(requestSchema), &c.Backend.RequestSchema)
	}
	if responseSchema != "" {
		_ = json.Unmarshal([]byte(responseSchema), &c.Backend.ResponseSchema)
	}

	if c.FrontendCalls, err = s.frontendCalls(ctx, id); err != nil {
		return nil, err
	}
	if c.Mismatches, err = s.mismatches(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) frontendCalls(ctx context.Context, contractID string) ([]FrontendCall, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, line_number, call_type, expected_schema, created_at
		FROM contract_frontend_calls WHERE contract_id = ?
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("contracts: list frontend calls: %w", err)
	}
	defer rows.Close()

	var calls []FrontendCall
	for rows.Next() {
		var call FrontendCall
		var expectedSchema string
		if err := rows.Scan(&call.ID, &call.File, &call.Line, &call.CallType, &expectedSchema, &call.CreatedAt); err != nil {
			return nil, err
		}
		if expectedSchema != "" {
			_ = json.Unmarshal([]byte(expectedSchema), &call.ExpectedSchema)
		}
		call.ContractID = contractID
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

func (s *Store) mismatches(ctx context.Context, contractID string) ([]FieldMismatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, field_path, mismatch_type, severity, description, backend_type, frontend_type
		FROM contract_mismatches WHERE contract_id = ?
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("contracts: list mismatches: %w", err)
	}
	defer rows.Close()

	var mismatches []FieldMismatch
	for rows.Next() {
		var m FieldMismatch
		var mType string
		if err := rows.Scan(&m.ID, &m.FieldPath, &mType, &m.Severity, &m.Description, &m.BackendType, &m.FrontendType); err != nil {
			return nil, err
		}
		m.Type = MismatchType(mType)
		mismatches = append(mismatches, m)
	}
	return mismatches, rows.Err()
}

// ListContracts returns contracts matching filters, most recently
// seen first.
func (s *Store) ListContracts(ctx context.Context, filters ContractFilters) ([]*Contract, error) {
	query := `SELECT id FROM contracts WHERE 1=1`
	var args []interface{}

	if filters.Method != "" {
		query += " AND method = ?"
		args = append(args, filters.Method)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Endpoint != "" {
		query += " AND endpoint LIKE ?"
		args = append(args, "%"+filters.Endpoint+"%")
	}
	if filters.HasMismatches != nil {
		if *filters.HasMismatches {
			query += " AND id IN (SELECT DISTINCT contract_id FROM contract_mismatches)"
		} else {
			query += " AND id NOT IN (SELECT DISTINCT contract_id FROM contract_mismatches)"
		}
	}

	query += " ORDER BY last_seen DESC"
	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contracts: list contracts: %w", err)
	}
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	contracts := make([]*Contract, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContract(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			contracts = append(contracts, c)
		}
	}
	return contracts, nil
}

// UpdateStatus sets a contract's lifecycle status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status ContractStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE contracts SET status = ?, updated_at = ? WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("contracts: update status %s: %w", id, err)
	}
	return nil
}

// DeleteContract removes a contract and its frontend calls and
// mismatches (cascaded by foreign key).
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("contracts: delete %s: %w", id, err)
	}
	return nil
}

// Stats aggregates counts across every stored contract.
func (s *Store) Stats(ctx context.Context) (*ContractStats, error) {
	stats := &ContractStats{ByMethod: make(map[string]int)}

	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`).Scan(&stats.Total)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'discovered'`).Scan(&stats.Discovered)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'verified'`).Scan(&stats.Verified)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'mismatch'`).Scan(&stats.Mismatch)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'ignored'`).Scan(&stats.Ignored)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_mismatches WHERE severity = 'error'`).Scan(&stats.TotalErrors)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_mismatches WHERE severity = 'warning'`).Scan(&stats.TotalWarnings)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_frontend_calls`).Scan(&stats.TotalCalls)

	rows, err := s.db.QueryContext(ctx, `SELECT method, COUNT(*) FROM contracts GROUP BY method`)
	if err != nil {
		return nil, fmt.Errorf("contracts: stats by method: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var count int
		if err := rows.Scan(&method, &count); err != nil {
			return nil, err
		}
		stats.ByMethod[method] = count
	}
	return stats, rows.Err()
}

// BulkSave saves every contract in turn with SaveContract. The saves run
// on the store's own handle, not on the transaction BulkSave opens, so
// they are not atomic: contracts saved before a failing one stay saved.
func (s *Store) BulkSave(ctx context.Context, contracts []*Contract) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("contracts: begin bulk save: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{db: s.db}
	for _, c := range contracts {
		if err := txStore.SaveContract(ctx, c); err != nil {
			return err
		}
	}
	return tx.Commit()
}

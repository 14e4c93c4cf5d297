// Package storage persists scan results — file metadata, parsed
// functions, call graph edges, detections, confidence scores,
// outliers, conventions, and coupling metrics — to a local SQLite
// database, so repeated scans can incrementally update state instead
// of recomputing it from scratch.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/driftlog"
)

// Store owns the database connection and the batch writer that
// serializes all mutations onto it.
type Store struct {
	db     *sql.DB
	writer *BatchWriter
	logger *driftlog.Logger
}

// Open opens or creates the database at dbDir/drift.db, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbDir string, logger *driftlog.Logger) (*Store, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, direrr.NewStorageError("create storage directory", err)
	}

	dbPath := filepath.Join(dbDir, "drift.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, direrr.NewStorageError("open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			db.Close()
			return nil, direrr.NewStorageError("set pragma", err)
		}
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, direrr.NewStorageError("ensure schema", err)
	}

	if logger == nil {
		logger = driftlog.Default()
	}

	return &Store{
		db:     db,
		writer: NewBatchWriter(db, logger),
		logger: logger,
	}, nil
}

// Close flushes pending writes and closes the database.
func (s *Store) Close() error {
	if err := s.writer.Close(); err != nil {
		return err
	}
	if err := s.db.Close(); err != nil {
		return direrr.NewStorageError("close database", err)
	}
	return nil
}

// Enqueue submits cmd to the batch writer.
func (s *Store) Enqueue(ctx context.Context, cmd Command) error {
	return s.writer.Enqueue(ctx, cmd)
}

// Flush waits for every previously enqueued command to commit.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// DB exposes the underlying connection for read queries. Writes must
// go through Enqueue so they're serialized by the batch writer.
func (s *Store) DB() *sql.DB { return s.db }

// WriterQueueDepth exposes the batch writer's current backlog for the
// runtime's queue-depth gauge.
func (s *Store) WriterQueueDepth() int { return s.writer.QueueDepth() }

// Page is one page of a keyset-paginated query result.
type Page struct {
	Rows       []map[string]any
	NextCursor string
	HasMore    bool
}

// QueryPage runs a keyset-paginated SELECT over table, ordered by
// orderCol ascending. cursor is the last-seen value of orderCol from a
// previous page, or "" for the first page. It avoids the OFFSET-scan
// cost of page-number pagination on large result sets.
func (s *Store) QueryPage(ctx context.Context, table, orderCol string, where string, args []any, cursor string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT * FROM %s", table)
	allArgs := append([]any{}, args...)

	clauses := []string{}
	if where != "" {
		clauses = append(clauses, where)
	}
	if cursor != "" {
		clauses = append(clauses, fmt.Sprintf("%s > ?", orderCol))
		allArgs = append(allArgs, cursor)
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT ?", orderCol)
	allArgs = append(allArgs, limit+1)

	rows, err := s.db.QueryContext(ctx, query, allArgs...)
	if err != nil {
		return nil, direrr.NewStorageError("query page", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, direrr.NewStorageError("read columns", err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, direrr.NewStorageError("scan row", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, direrr.NewStorageError("iterate rows", err)
	}

	page := &Page{Rows: out}
	if len(out) > limit {
		page.HasMore = true
		page.Rows = out[:limit]
	}
	if len(page.Rows) > 0 {
		if v, ok := page.Rows[len(page.Rows)-1][orderCol]; ok {
			page.NextCursor = fmt.Sprintf("%v", v)
		}
	}
	return page, nil
}

// Package storage provides the SQLite agent-run audit log.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/modelgate/model"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// RunStore appends finished agent runs. Records are never updated.
type RunStore interface {
	SaveRun(ctx context.Context, run model.Run, prompt string) error
	Close() error
}

// AuditEntry is a stored run with its prompt and insertion time.
type AuditEntry struct {
	Run       model.Run `json:"run"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SqliteStorage implements RunStore using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newStorage(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// every connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return newStorage(db)
}

func newStorage(db *sql.DB) (*SqliteStorage, error) {
	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt TEXT NOT NULL,
			output TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created
		ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS tool_calls (
			run_id TEXT NOT NULL,
			call_index INTEGER NOT NULL,
			name TEXT NOT NULL,
			args TEXT NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
			PRIMARY KEY (run_id, call_index)
		);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun appends a run and its tool records in one transaction.
func (s *SqliteStorage) SaveRun(ctx context.Context, run model.Run, prompt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, provider, model, prompt, output, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Provider, run.Model, prompt, run.Output, run.DurationMs, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO tool_calls (run_id, call_index, name, args, ok, error) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, call := range run.ToolCalls {
		if _, err := stmt.ExecContext(ctx, run.ID, i, call.Name, call.Args, call.OK, call.Error); err != nil {
			return fmt.Errorf("failed to insert tool call: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun loads one run with its tool records in call order.
func (s *SqliteStorage) GetRun(ctx context.Context, id string) (AuditEntry, error) {
	var entry AuditEntry
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, provider, model, prompt, output, duration_ms, created_at FROM runs WHERE id = ?", id,
	).Scan(&entry.Run.ID, &entry.Run.Provider, &entry.Run.Model, &entry.Prompt,
		&entry.Run.Output, &entry.Run.DurationMs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AuditEntry{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return AuditEntry{}, fmt.Errorf("failed to query run: %w", err)
	}
	entry.CreatedAt = time.UnixMilli(createdAt)

	calls, err := s.toolCalls(ctx, id)
	if err != nil {
		return AuditEntry{}, err
	}
	entry.Run.ToolCalls = calls
	return entry, nil
}

// ListRuns returns the most recent runs first, without their tool records.
func (s *SqliteStorage) ListRuns(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, provider, model, prompt, output, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var entry AuditEntry
		var createdAt int64
		if err := rows.Scan(&entry.Run.ID, &entry.Run.Provider, &entry.Run.Model, &entry.Prompt,
			&entry.Run.Output, &entry.Run.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SqliteStorage) toolCalls(ctx context.Context, runID string) ([]model.ToolInvocation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, args, ok, error FROM tool_calls WHERE run_id = ? ORDER BY call_index", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool calls: %w", err)
	}
	defer rows.Close()

	calls := []model.ToolInvocation{}
	for rows.Next() {
		var call model.ToolInvocation
		var errMsg sql.NullString
		if err := rows.Scan(&call.Name, &call.Args, &call.OK, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan tool call: %w", err)
		}
		if errMsg.Valid {
			call.Error = &errMsg.String
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

var _ RunStore = (*SqliteStorage)(nil)

// Package rowstore persists compile and execution history to a SQLite
// database, and exposes a module function scripts can call to leave a
// custom breadcrumb in that same audit trail. Adapted from the host
// application's pkg/database SQLite wiring (WAL pragma, single-writer
// connection pool sizing).
package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

// Store wraps a SQLite connection recording compile and execution
// history for later inspection.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at path (":memory:" for an
// ephemeral store) and ensures its schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	} else if dsn == ":memory:" {
		dsn += "?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging audit store: %w", err)
	}

	store := &Store{db: db}
	if err := store.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS compiles (
			id TEXT PRIMARY KEY,
			source_length INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			diagnostic_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			compile_id TEXT NOT NULL REFERENCES compiles(id),
			succeeded INTEGER NOT NULL,
			result_text TEXT,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			execution_id TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating audit schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCompile appends one row describing a completed compilation.
func (s *Store) RecordCompile(ctx context.Context, id string, sourceLength int, succeeded bool, diagnosticCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compiles (id, source_length, succeeded, diagnostic_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, sourceLength, boolToInt(succeeded), diagnosticCount, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecordExecution appends one row describing a completed execution.
func (s *Store) RecordExecution(ctx context.Context, id, compileID string, succeeded bool, resultText string, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (id, compile_id, succeeded, result_text, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, compileID, boolToInt(succeeded), resultText, duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecordEvent appends a free-form breadcrumb tied to an execution ID.
func (s *Store) RecordEvent(ctx context.Context, executionID, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (execution_id, message, created_at) VALUES (?, ?, ?)`,
		executionID, message, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ExecutionCount reports how many execution rows are on file, for
// smoke-testing that writes actually landed.
func (s *Store) ExecutionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM executions`).Scan(&n)
	return n, err
}

// EventsFor returns every breadcrumb recorded for one execution ID, in
// insertion order.
func (s *Store) EventsFor(ctx context.Context, executionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message FROM events WHERE execution_id = ? ORDER BY rowid`, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Register wires moduleName/record_event(message) so a compiled program
// can leave its own breadcrumb in the audit trail, tagged with
// executionID (bound at registration time — one Store registration per
// execution run).
func (s *Store) Register(reg *registry.Registry, moduleName, executionID string) {
	reg.AddFunction(registry.FuncDef{
		Name:       "record_event",
		Module:     moduleName,
		Inlineable: false,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			msg, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			if err := s.RecordEvent(context.Background(), executionID, msg.Text()); err != nil {
				return value.Value{}, &registry.RuntimeError{Kind: "FunctionError", Message: err.Error()}
			}
			return value.Bool(true), nil
		},
	})
}

// Package postgres persists reload reports to a Postgres server.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"tintcore/internal/reload"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/tintcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store writes each report as a JSONB document keyed by cycle id.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore connects using dsn (defaultDSN when empty) and ensures the
// reports table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTable(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS reload_reports (
		id TEXT PRIMARY KEY,
		started_at BIGINT NOT NULL,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure reload_reports table: %w", err)
	}
	return nil
}

// Record upserts r inside a transaction.
func (s *Store) Record(ctx context.Context, r reload.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO reload_reports (id, started_at, payload) VALUES ($1,$2,$3) ON CONFLICT (id) DO UPDATE SET started_at=EXCLUDED.started_at, payload=EXCLUDED.payload`,
		r.ID.String(), r.StartedAt.UnixNano(), data); err != nil {
		return fmt.Errorf("upsert report %s: %w", r.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Recent returns up to n reports, newest first. n <= 0 returns all.
func (s *Store) Recent(ctx context.Context, n int) ([]reload.Report, error) {
	query := `SELECT payload FROM reload_reports ORDER BY started_at DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT $1`
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []reload.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var r reload.Report
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

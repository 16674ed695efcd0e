// Package sqlite persists reload reports to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"tintcore/internal/reload"
)

const defaultPath = "tintcore.db"

// Store writes each report as a JSON blob keyed by cycle id.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the journal database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS reload_reports (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create reload_reports table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Record upserts r.
func (s *Store) Record(ctx context.Context, r reload.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO reload_reports(id,started_at,payload) VALUES(?,?,?) ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, payload=excluded.payload`,
		r.ID.String(), r.StartedAt.UnixNano(), data); err != nil {
		return fmt.Errorf("upsert report %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to n reports, newest first. n <= 0 returns all.
func (s *Store) Recent(ctx context.Context, n int) ([]reload.Report, error) {
	query := `SELECT payload FROM reload_reports ORDER BY started_at DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
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
			return nil, fmt.Errorf("scan: %w", err)
		}
		var r reload.Report
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

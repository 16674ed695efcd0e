// Package journal selects a persistence backend for reload reports.
package journal

import (
	"context"
	"fmt"

	"tintcore/internal/infra/persistence/memory"
	"tintcore/internal/infra/persistence/postgres"
	"tintcore/internal/infra/persistence/sqlite"
	"tintcore/internal/reload"
)

// Driver identifies a concrete journal implementation.
type Driver string

const (
	Memory   Driver = "memory"   // in-process only
	SQLite   Driver = "sqlite"   // embedded sqlite file
	Postgres Driver = "postgres" // PostgreSQL server
)

// Store persists reload reports and lists the most recent ones.
type Store interface {
	reload.Journal
	Recent(ctx context.Context, n int) ([]reload.Report, error)
	Close() error
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Open returns the store for driver. dsn is the sqlite path or the postgres
// connection string; memory ignores it. An empty driver selects Memory.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case "", Memory:
		return memory.NewStore(0), nil
	case SQLite:
		return sqlite.NewStore(dsn)
	case Postgres:
		return postgres.NewStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("journal: unknown driver %q", driver)
	}
}

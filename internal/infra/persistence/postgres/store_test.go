package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tintcore/internal/infra/persistence/postgres/testutil"
	"tintcore/internal/reload"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("driver = %s", driverName)
		}
		return db, nil
	})
	t.Cleanup(restore)
	s, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, conn
}

func TestNewStoreCreatesTable(t *testing.T) {
	_, conn := openStub(t)
	if len(conn.Execs) != 1 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS reload_reports") {
		t.Fatalf("expected table DDL, got %v", conn.Execs)
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s, conn := openStub(t)
	base := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := reload.Report{ID: uuid.New(), StartedAt: base.Add(time.Duration(i) * time.Hour)}
		ids = append(ids, r.ID)
		if err := s.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if got := len(conn.Tables["reload_reports"]); got != 3 {
		t.Fatalf("rows = %d", got)
	}
	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Fatalf("unexpected reports %+v", got)
	}
}

func TestFailures(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		set  func(*testutil.StubConn)
		want string
	}{
		{"begin", func(c *testutil.StubConn) { c.FailBegin = true }, "begin tx"},
		{"exec", func(c *testutil.StubConn) { c.FailExec = true }, "upsert report"},
		{"commit", func(c *testutil.StubConn) { c.FailCommit = true }, "commit"},
	}
	for _, tc := range cases {
		s, conn := openStub(t)
		tc.set(conn)
		err := s.Record(ctx, reload.Report{ID: uuid.New(), StartedAt: time.Now()})
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v", tc.name, err)
		}
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

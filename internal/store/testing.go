package store

import (
	"database/sql"
	"testing"
)

// OpenMemory opens a migrated in-memory database for tests. MaxOpenConns
// stays at 1 so every query hits the same in-memory database (each new
// connection to :memory: would create a separate one). Closed via t.Cleanup.
func OpenMemory(t testing.TB) *DB {
	t.Helper()

	pool, err := sql.Open("sqlite", "file::memory:?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	pool.SetMaxOpenConns(1)

	if err := Migrate(pool); err != nil {
		_ = pool.Close()
		t.Fatalf("migrate memory db: %v", err)
	}

	d := &DB{Pool: pool}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

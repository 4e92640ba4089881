package sqlite

import (
	"context"
	"testing"
	"time"
)

// newTestPool returns a migrated, in-memory ConnectionPool for use in a
// single test. PoolSize is pinned to 1 and idle connections match, since
// SQLite's :memory: database does not persist across connections.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(PoolConfig{
		DSN:               ":memory:",
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		PoolSize:          1,
		AcquireTimeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close pool: %v", err)
		}
	})

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return pool
}

package sqlite

import (
	"context"
	"testing"
	"time"
)

func poolConfigForTest(poolSize int, acquireTimeout time.Duration) PoolConfig {
	return PoolConfig{
		DSN:               ":memory:",
		BusyTimeout:       time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		PoolSize:          poolSize,
		AcquireTimeout:    acquireTimeout,
	}
}

func TestConnectionPool_Acquire_WaitsThenTimesOutWhenExhausted(t *testing.T) {
	pool, err := NewConnectionPool(poolConfigForTest(1, 50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewConnectionPool returned error: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	ctx := context.Background()
	lease, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}

	if _, err := pool.Acquire(ctx); err == nil {
		t.Fatalf("expected second Acquire to time out while the only slot is held")
	}

	lease.Release()

	lease2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after Release returned error: %v", err)
	}
	lease2.Release()
}

func TestConnectionPool_Ping_AcquiresAndReleasesItsLease(t *testing.T) {
	pool, err := NewConnectionPool(poolConfigForTest(2, time.Second))
	if err != nil {
		t.Fatalf("NewConnectionPool returned error: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	// Ping must release its lease: both PoolSize slots should be free
	// again, so two concurrent Acquire calls must succeed without blocking.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	second, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire returned error: %v", err)
	}
	first.Release()
	second.Release()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// PoolConfig configures both the PRAGMA settings database/sql applies once
// at open time and the acquire-lease bookkeeping ConnectionPool layers on
// top of it.
type PoolConfig struct {
	// DSN is the database file path, or ":memory:".
	DSN string

	// BusyTimeout sets how long SQLite itself waits for a lock before
	// returning SQLITE_BUSY.
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking.
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, MEMORY, etc.)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF).
	Synchronous string

	// CacheSize sets the page cache size in KB (negative for pages).
	CacheSize int

	// ConnMaxLifetime bounds how long a pooled connection is reused before
	// database/sql discards it.
	ConnMaxLifetime time.Duration

	// PoolSize bounds how many leases Acquire hands out at once. Zero
	// defaults to 8.
	PoolSize int

	// AcquireTimeout bounds how long Acquire waits for a free slot before
	// giving up. Zero defaults to 5s.
	AcquireTimeout time.Duration
}

func (c PoolConfig) poolSize() int {
	if c.PoolSize > 0 {
		return c.PoolSize
	}
	return 8
}

func (c PoolConfig) acquireTimeout() time.Duration {
	if c.AcquireTimeout > 0 {
		return c.AcquireTimeout
	}
	return 5 * time.Second
}

// ConnectionPool manages SQLite database connections, layering an
// acquire/release lease with a bounded wait on top of database/sql's own
// pooling, and providing helpers for running work inside a transaction.
type ConnectionPool struct {
	db     *sql.DB
	config PoolConfig
	sem    chan struct{}
}

// NewConnectionPool opens config.DSN, applies its PRAGMA settings, and
// returns a pool that gates concurrent Acquire callers to PoolSize leases.
func NewConnectionPool(config PoolConfig) (*ConnectionPool, error) {
	if err := validatePoolConfig(config); err != nil {
		return nil, fmt.Errorf("invalid sqlite pool configuration: %w", err)
	}
	if err := createDatabaseFile(config.DSN); err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}

	db, err := sql.Open("sqlite", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(config.poolSize())
	db.SetMaxIdleConns(config.poolSize())
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := applyPragmas(db, config); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &ConnectionPool{
		db:     db,
		config: config,
		sem:    make(chan struct{}, config.poolSize()),
	}, nil
}

func validatePoolConfig(config PoolConfig) error {
	if config.DSN == "" {
		return errors.New("DSN cannot be empty")
	}
	if config.BusyTimeout < 0 {
		return errors.New("BusyTimeout cannot be negative")
	}
	validJournalModes := map[string]bool{"": true, "DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	if !validJournalModes[config.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", config.JournalMode)
	}
	validSyncModes := map[string]bool{"": true, "OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
	if !validSyncModes[config.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", config.Synchronous)
	}
	if config.PoolSize < 0 {
		return errors.New("PoolSize cannot be negative")
	}
	if config.AcquireTimeout < 0 {
		return errors.New("AcquireTimeout cannot be negative")
	}
	return nil
}

// createDatabaseFile creates dsn's parent directory and an empty database
// file if neither exists yet. In-memory databases are left alone.
func createDatabaseFile(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") {
		return nil
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	if _, err := os.Stat(dsn); err == nil {
		return nil
	}

	file, err := os.OpenFile(dsn, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create database file %s: %w", dsn, err)
	}
	return file.Close()
}

// applyPragmas issues the PRAGMA statements config calls for once, through
// db.Exec, so they take effect on whichever pooled connection database/sql
// runs them on; connections it opens later do not receive them.
func applyPragmas(db *sql.DB, config PoolConfig) error {
	var pragmas []string
	pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", config.BusyTimeout.Milliseconds()))
	if config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", config.JournalMode))
	}
	if config.Synchronous != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA synchronous = %s", config.Synchronous))
	}
	if config.EnableForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	if config.CacheSize != 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA cache_size = %d", config.CacheSize))
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}
	return nil
}

// DB returns the underlying database connection
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Lease is a connection acquired from a ConnectionPool. Callers must call
// Release exactly once to return the slot; this is the Go stand-in for the
// RAII lease its C++ ancestor released via a destructor.
type Lease struct {
	pool *ConnectionPool
	conn *sql.Conn
}

// Conn returns the leased connection.
func (l *Lease) Conn() *sql.Conn { return l.conn }

// Release pings the connection before returning it. database/sql discards a
// connection instead of pooling it once a driver call has observed it as
// broken, so a failed ping here means the Close just below drops the
// connection rather than handing it to the next Acquire.
func (l *Lease) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.conn.PingContext(ctx)
	_ = l.conn.Close()
	<-l.pool.sem
}

// Acquire waits for a free slot, up to config.AcquireTimeout, then leases a
// connection from the pool. The caller must call Release on the returned
// Lease.
func (cp *ConnectionPool) Acquire(ctx context.Context) (*Lease, error) {
	timeout := cp.config.acquireTimeout()
	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case cp.sem <- struct{}{}:
	case <-acquireCtx.Done():
		return nil, fmt.Errorf("sqlite: acquire timed out after %s: %w", timeout, acquireCtx.Err())
	}

	conn, err := cp.db.Conn(ctx)
	if err != nil {
		<-cp.sem
		return nil, fmt.Errorf("sqlite: acquire connection: %w", err)
	}
	return &Lease{pool: cp, conn: conn}, nil
}

// Ping acquires and releases a lease, exercising both the bounded-wait
// acquire path and the ping-then-discard-if-broken release path on every
// health check.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	lease, err := cp.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return lease.Conn().PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes a function within a database transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, the transaction is committed
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	
	defer func() {
		if p := recover(); p != nil {
			// Rollback on panic
			if rbErr := tx.Rollback(); rbErr != nil {
				// Log rollback error but don't mask the original panic
			}
			panic(p)
		}
	}()
	
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	
	return nil
}

// WithReadOnlyTransaction executes a function within a read-only transaction
func (cp *ConnectionPool) WithReadOnlyTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	
	defer func() {
		if p := recover(); p != nil {
			// Rollback on panic
			if rbErr := tx.Rollback(); rbErr != nil {
				// Log rollback error but don't mask the original panic
			}
			panic(p)
		}
	}()
	
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("read-only transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit read-only transaction: %w", err)
	}
	
	return nil
}

// QueryHelper provides helper methods for common query patterns
type QueryHelper struct {
	pool *ConnectionPool
}

// NewQueryHelper creates a new query helper
func NewQueryHelper(pool *ConnectionPool) *QueryHelper {
	return &QueryHelper{pool: pool}
}

// QueryRow executes a query that returns a single row
func (qh *QueryHelper) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return qh.pool.db.QueryRowContext(ctx, query, args...)
}

// Query executes a query that returns multiple rows
func (qh *QueryHelper) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return qh.pool.db.QueryContext(ctx, query, args...)
}

// Exec executes a query that doesn't return rows
func (qh *QueryHelper) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return qh.pool.db.ExecContext(ctx, query, args...)
}

// QueryRowTx executes a query that returns a single row within a transaction
func (qh *QueryHelper) QueryRowTx(tx *sql.Tx, query string, args ...interface{}) *sql.Row {
	return tx.QueryRow(query, args...)
}

// QueryTx executes a query that returns multiple rows within a transaction
func (qh *QueryHelper) QueryTx(tx *sql.Tx, query string, args ...interface{}) (*sql.Rows, error) {
	return tx.Query(query, args...)
}

// ExecTx executes a query that doesn't return rows within a transaction
func (qh *QueryHelper) ExecTx(tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	return tx.Exec(query, args...)
}

// Sentinel errors that ErrorMapper.MapError wraps around the underlying
// driver error, so callers can classify a mapped error with errors.Is
// instead of matching driver-specific strings themselves.
var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateRecord     = errors.New("duplicate record")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrDatabaseLocked      = errors.New("database locked")
)

// ErrorMapper maps SQLite errors to persistence layer errors
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps SQLite-specific errors to persistence layer errors
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}

	// Handle sql.ErrNoRows
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %v", ErrRecordNotFound, err)
	}

	// Check for SQLite-specific error codes
	errStr := err.Error()

	// UNIQUE constraint violations
	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return fmt.Errorf("%w: %v", ErrDuplicateRecord, err)
	}

	// FOREIGN KEY constraint violations
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed", "foreign key constraint"}) {
		return fmt.Errorf("%w: %v", ErrForeignKeyViolation, err)
	}

	// CHECK constraint violations
	if containsAny(errStr, []string{"CHECK constraint failed"}) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}

	// Database locked errors
	if containsAny(errStr, []string{"database is locked", "database locked"}) {
		return fmt.Errorf("%w: %v", ErrDatabaseLocked, err)
	}

	// Return original error if no mapping found
	return err
}

// containsAny checks if the string contains any of the given substrings
func containsAny(s string, substrings []string) bool {
	for _, substr := range substrings {
		if len(s) >= len(substr) {
			for i := 0; i <= len(s)-len(substr); i++ {
				if s[i:i+len(substr)] == substr {
					return true
				}
			}
		}
	}
	return false
}
// Package migration scans a directory of {version}_{description}.sql files
// and applies whichever ones are missing from a schema_migrations table, in
// ascending version order, each inside its own transaction.
//
// Connection pooling, PRAGMA configuration, and the database file itself are
// the caller's concern (see the parent sqlite package's ConnectionPool);
// this package only ever touches the *sql.DB it's handed.
//
// Example usage:
//
//	manager := NewManager(NewFileScanner(), NewSQLiteExecutor(db), migrationsDir)
//	if err := manager.RunMigrations(ctx); err != nil {
//		log.Fatalf("migration failed: %v", err)
//	}
package migration

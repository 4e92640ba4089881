package sqlite

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meeting-platform/core/internal/storage/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies every pending schema migration against pool, tracking
// applied versions in schema_migrations so it is safe to call on every
// process start.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	dir, err := stageMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to stage migration files: %w", err)
	}
	defer os.RemoveAll(dir)

	manager := migration.NewManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(pool.DB()),
		dir,
	)
	return manager.RunMigrations(ctx)
}

// stageMigrationFiles copies the embedded migration SQL into a temp
// directory so migration.Scanner, which reads from a real filesystem path,
// can scan them the same way it would a checked-out migrations/ dir.
func stageMigrationFiles() (string, error) {
	dir, err := os.MkdirTemp("", "meeting-migrations-*")
	if err != nil {
		return "", err
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	for _, entry := range entries {
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			os.RemoveAll(dir)
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, entry.Name()), content, 0o600); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}

	return dir, nil
}

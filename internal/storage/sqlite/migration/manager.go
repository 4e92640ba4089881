package migration

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"
)

// Manager scans a migration directory and applies whatever has not yet been
// recorded in schema_migrations, in ascending version order.
type Manager struct {
	scanner      Scanner
	executor     Executor
	migrationDir string
}

// NewManager constructs a Manager rooted at migrationDir.
func NewManager(scanner Scanner, executor Executor, migrationDir string) *Manager {
	return &Manager{scanner: scanner, executor: executor, migrationDir: migrationDir}
}

// RunMigrations applies every migration file not yet recorded in
// schema_migrations, in ascending version order, aborting on the first
// failure so the schema never ends up partially advanced.
func (m *Manager) RunMigrations(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.pendingMigrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Printf("schema migrations: up to date")
		return nil
	}

	log.Printf("schema migrations: applying %d pending migration(s)", len(pending))
	for i, mig := range pending {
		start := time.Now()
		log.Printf("schema migrations: applying %s (%s) [%d/%d]", mig.Version, mig.Description, i+1, len(pending))

		if err := m.executor.ExecuteMigration(ctx, mig); err != nil {
			return NewMigrationError(mig.Version, mig.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		if err := m.executor.RecordMigration(ctx, mig.Version, time.Since(start)); err != nil {
			return NewMigrationError(mig.Version, mig.FilePath, "record migration",
				fmt.Errorf("failed to record migration: %w", err))
		}
	}
	log.Printf("schema migrations: applied %d migration(s)", len(pending))
	return nil
}

// pendingMigrations returns available migrations not yet applied, sorted
// ascending by numeric version, after checking the sequence has no gaps.
func (m *Manager) pendingMigrations(ctx context.Context) ([]Migration, error) {
	available, err := m.scanner.ScanMigrations(m.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	if err := validateSequence(available, applied); err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, a := range applied {
		appliedSet[a.Version] = true
	}

	var pending []Migration
	for _, mig := range available {
		if !appliedSet[mig.Version] {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		vi, _ := strconv.Atoi(pending[i].Version)
		vj, _ := strconv.Atoi(pending[j].Version)
		return vi < vj
	})
	return pending, nil
}

// validateSequence checks that the available migration versions form a
// contiguous run starting at their own minimum, and that every already
// applied version still has a matching file on disk.
func validateSequence(available []Migration, applied []AppliedMigration) error {
	if len(available) == 0 {
		return nil
	}

	versions := make([]int, 0, len(available))
	for _, mig := range available {
		v, err := strconv.Atoi(mig.Version)
		if err != nil {
			return NewMigrationError(mig.Version, mig.FilePath, "validate sequence",
				fmt.Errorf("%w: version '%s' is not numeric", ErrInvalidVersion, mig.Version))
		}
		versions = append(versions, v)
	}
	sort.Ints(versions)

	seen := make(map[int]bool, len(versions))
	for _, v := range versions {
		seen[v] = true
	}
	for v := versions[0]; v <= versions[len(versions)-1]; v++ {
		if !seen[v] {
			return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, v)
		}
	}

	for _, a := range applied {
		v, err := strconv.Atoi(a.Version)
		if err != nil {
			return NewDatabaseError(a.Version, "", "validate sequence",
				fmt.Errorf("%w: applied version '%s' is not numeric", ErrVersionTableCorrupt, a.Version))
		}
		if !seen[v] {
			return fmt.Errorf("%w: applied migration %03d not found in available migrations", ErrVersionConflict, v)
		}
	}

	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MigrationStatus reports the schema version recorded by golang-migrate.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// ReadMigrationStatus inspects the schema_migrations table. A missing row
// means no migration has been applied yet.
func ReadMigrationStatus(ctx context.Context, db *sql.DB) (MigrationStatus, error) {
	var status MigrationStatus
	row := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`)
	var version int64
	if err := row.Scan(&version, &status.Dirty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status, nil
		}
		return status, fmt.Errorf("database: read schema_migrations: %w", err)
	}
	if version < 0 {
		return status, fmt.Errorf("database: invalid schema version %d", version)
	}
	status.Version = uint(version)
	status.Applied = true
	return status, nil
}

func (s MigrationStatus) String() string {
	if !s.Applied {
		return "no migrations applied"
	}
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

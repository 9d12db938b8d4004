package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

//go:embed migrations/002_revoked_tokens.up.sql
var revokedTokensSQL string

type migration struct {
	name  string
	table string
	sql   string
}

var migrations = []migration{
	{name: "001_initial", table: "users", sql: initialMigrationSQL},
	{name: "002_revoked_tokens", table: "revoked_tokens", sql: revokedTokensSQL},
}

// EnsureSchema applies every migration whose table is missing. The SQL uses
// IF NOT EXISTS so a partially applied migration is safe to re-run.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	for _, m := range migrations {
		exists, err := db.hasTable(ctx, m.table)
		if err != nil {
			return fmt.Errorf("check table %s: %w", m.table, err)
		}
		if exists {
			continue
		}

		slog.Info("applying migration", "migration", m.name)
		if _, err := db.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasTable(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			  AND table_name = $1
		)
	`, table).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

package database

import (
	"context"
	"fmt"
	"strings"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			due_at TEXT NOT NULL,
			estimated_minutes INTEGER NOT NULL,
			locked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scheduled_blocks (
			id TEXT PRIMARY KEY,
			assignment_id TEXT,
			step_id TEXT,
			step_index INTEGER NOT NULL DEFAULT 0,
			step_count INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			category TEXT,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			locked INTEGER NOT NULL DEFAULT 0,
			user_edited INTEGER NOT NULL DEFAULT 0,
			plan_key TEXT,
			completed_at TEXT,
			archived_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_status_start ON scheduled_blocks(status, start_at);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_assignment ON scheduled_blocks(assignment_id);`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
	},
	{
		`CREATE TABLE IF NOT EXISTS reschedule_attempts (
			id TEXT PRIMARY KEY,
			block_id TEXT NOT NULL,
			attempt_type TEXT NOT NULL,
			attempted_at TEXT NOT NULL,
			old_start TEXT NOT NULL,
			old_end TEXT NOT NULL,
			new_start TEXT,
			new_end TEXT,
			success INTEGER NOT NULL DEFAULT 0,
			failure_reason TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_block ON reschedule_attempts(block_id, attempted_at);`,
	},
}

// SchemaVersion is the user_version after all migrations ran.
var SchemaVersion = len(migrations)

func (d *Database) migrate(ctx context.Context) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		var version int
		if err := d.DB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		for i := version; i < len(migrations); i++ {
			tx, err := d.DB.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
			for _, stmt := range migrations[i] {
				if _, err := tx.ExecContext(ctx, stmt); err != nil && !isIgnorableMigrationErr(err) {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d: %w", i+1, err)
				}
			}
			// PRAGMA does not take bind parameters.
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func isIgnorableMigrationErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists")
}

// Version returns the schema version stored in the database.
func (d *Database) Version(ctx context.Context) (int, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (int, error) {
		var v int
		err := d.DB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
		return v, err
	})
}

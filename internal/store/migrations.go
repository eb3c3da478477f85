package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the ledger tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		state        TEXT NOT NULL DEFAULT 'PENDING',
		created_at   TEXT NOT NULL,
		completed_at TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		run_id       TEXT NOT NULL,
		name         TEXT NOT NULL,
		state        TEXT NOT NULL DEFAULT 'PENDING',
		cores        INTEGER NOT NULL DEFAULT 1,
		command      TEXT NOT NULL DEFAULT '',
		exit_code    INTEGER,
		reason       TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		started_at   TEXT,
		completed_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_run_id ON tasks(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		label           TEXT NOT NULL DEFAULT '',
		policy          TEXT NOT NULL,
		quantum         INTEGER NOT NULL,
		aging_enabled   INTEGER NOT NULL DEFAULT 0,
		aging_threshold INTEGER NOT NULL,
		summary         TEXT NOT NULL,
		created_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_processes (
		run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		process_id      INTEGER NOT NULL,
		name            TEXT NOT NULL,
		arrival_time    INTEGER NOT NULL,
		burst_time      INTEGER NOT NULL,
		priority        INTEGER NOT NULL,
		start_time      INTEGER NOT NULL,
		completion_time INTEGER NOT NULL,
		waiting_time    INTEGER NOT NULL,
		turnaround_time INTEGER NOT NULL,
		response_time   INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_policy ON runs(policy)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

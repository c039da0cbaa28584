package queue

import (
	"context"
	"fmt"
)

const schemaVersion = 1

const createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid TEXT NOT NULL UNIQUE,
    source_paths_json TEXT NOT NULL,
    engine TEXT NOT NULL,
    deliver_json TEXT,
    status TEXT NOT NULL,
    error_message TEXT,
    progress_percent REAL NOT NULL DEFAULT 0,
    progress_message TEXT,
    cancel_requested INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    started_at TEXT,
    finished_at TEXT
)`

const createStatusIndex = `CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`

func (s *Store) applyMigrations(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("queue database schema version %d is newer than supported %d", version, schemaVersion)
	}

	for _, stmt := range []string{createJobsTable, createStatusIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if version < schemaVersion {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}

// Package store archives finished simulation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    preset TEXT DEFAULT '',
    seed INTEGER NOT NULL,
    rounds_completed INTEGER NOT NULL,
    termination TEXT NOT NULL,
    final_hawks INTEGER NOT NULL,
    final_doves INTEGER NOT NULL,
    config TEXT NOT NULL,   -- YAML snapshot
    summary TEXT NOT NULL,  -- JSON
    report TEXT             -- JSON
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- One row per completed round
CREATE TABLE IF NOT EXISTS rounds (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    round INTEGER NOT NULL,
    food INTEGER NOT NULL,
    hawks INTEGER NOT NULL,
    doves INTEGER NOT NULL,
    dead_hawks INTEGER NOT NULL,
    dead_doves INTEGER NOT NULL,
    hawk_births INTEGER NOT NULL,
    dove_births INTEGER NOT NULL,
    pairs INTEGER NOT NULL,
    unpaired INTEGER NOT NULL,
    hawk_energy_mean REAL,
    hawk_energy_p10 REAL,
    hawk_energy_p50 REAL,
    hawk_energy_p90 REAL,
    dove_energy_mean REAL,
    dove_energy_p10 REAL,
    dove_energy_p50 REAL,
    dove_energy_p90 REAL,
    total_energy INTEGER NOT NULL,
    PRIMARY KEY (run_id, round)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// migrate creates the schema and records its version. Older versions do
// not exist yet, so there is nothing to upgrade.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case version > SchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	return nil
}

package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Tests load it
// via GetSchemaSQL() so repository code and schema cannot drift apart.
const SchemaSQL = `
-- Runs (one per dry-run or apply invocation)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	work_tree TEXT NOT NULL,
	mode TEXT NOT NULL CHECK(mode IN ('dry-run', 'apply', 'apply+force')),
	outcome TEXT NOT NULL CHECK(outcome IN ('running', 'completed', 'halted')) DEFAULT 'running',
	patch_count INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_work_tree ON runs(work_tree);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- Attempts (one per processed patch, immutable)
CREATE TABLE IF NOT EXISTS attempts (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	patch TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('CHECK_OK', 'APPLIED', 'APPLIED_WITH_REJECTS', 'FAILED', 'FORCE_FAILED')),
	mode TEXT NOT NULL,
	stderr TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (run_id, seq),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

// InitSchema creates the database schema on a fresh database and runs
// pending migrations on an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install - create the modern schema and mark every migration applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

// Package sqlite_test contains integration tests for SQLite repositories.
//
// Every test database is built from db.GetSchemaSQL() so the tests always
// run against the authoritative schema.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/patchrun/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A single connection keeps the in-memory database alive across queries.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRun inserts a running run and returns its ID.
func seedRun(t *testing.T, db *sql.DB, id, workTree string) string {
	t.Helper()
	if id == "" {
		id = "run-001"
	}
	if workTree == "" {
		workTree = "/tmp/work"
	}
	_, err := db.Exec("INSERT INTO runs (id, work_tree, mode, patch_count) VALUES (?, ?, 'apply', 3)", id, workTree)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return id
}

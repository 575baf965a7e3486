// Package storage provides SQLite schema definitions and a schema version
// check; a stored version other than schemaVersion is reported as an error.
package storage

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// Schema defines the complete database schema. Each project document is
// stored as a single JSON blob: the document graph nests nodes/edges and
// the loop/class/knowledge-state collections are themselves per-project,
// so a normalized per-entity schema would mostly re-encode the same
// nested JSON into columns without buying queryability the engine needs
// (all real queries run against the in-memory daygraph/loopstore/
// equivalence indexes, not SQL).
const schema = `
-- Schema metadata for versioning
CREATE TABLE IF NOT EXISTS schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Documents table: one row per project artifact (spec §6).
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at DESC);
`

// initializeSchema creates all tables and indexes
func initializeSchema(db *sql.DB) error {
	// Execute schema
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Check schema version
	var currentVersion int
	err := db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'version'").Scan(&currentVersion)
	if err == sql.ErrNoRows {
		// First time initialization
		_, err = db.Exec("INSERT INTO schema_metadata (key, value) VALUES ('version', ?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to query schema version: %w", err)
	} else if currentVersion != schemaVersion {
		// Future: run migrations here
		return fmt.Errorf("schema version mismatch: expected %d, got %d", schemaVersion, currentVersion)
	}

	return nil
}

// configureSQLite sets optimal pragmas for performance and safety
func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",         // Write-Ahead Logging for concurrent reads
		"PRAGMA synchronous = NORMAL",       // Balance safety vs performance
		"PRAGMA cache_size = -64000",        // 64MB cache
		"PRAGMA foreign_keys = ON",          // Enforce referential integrity
		"PRAGMA temp_store = MEMORY",        // Keep temp tables in memory
		"PRAGMA mmap_size = 268435456",      // 256MB memory-mapped I/O
		"PRAGMA page_size = 8192",           // 8KB page size
		"PRAGMA auto_vacuum = INCREMENTAL", // Incremental vacuum mode
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}


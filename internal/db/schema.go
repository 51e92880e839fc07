package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// SchemaSQL is the authoritative schema, applied by migration 1.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema brings conn up to the current schema version.
func InitSchema(conn *sql.DB, logger *zap.Logger) error {
	if err := RunMigrations(conn, logger); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

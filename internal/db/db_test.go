package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func schemaVersion(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var v int
	require.NoError(t, conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v))
	return v
}

func TestOpen_FreshInstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notehub.db")

	conn, err := Open(path, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Equal(t, CurrentVersion(), schemaVersion(t, conn))

	_, err = conn.Exec("INSERT INTO kv_store (key, value) VALUES ('k', 'v')")
	require.NoError(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notehub.db")

	conn, err := Open(path, nil)
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO kv_store (key, value) VALUES ('k', 'kept')")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	conn, err = Open(path, nil)
	require.NoError(t, err)
	defer conn.Close()

	var value string
	require.NoError(t, conn.QueryRow("SELECT value FROM kv_store WHERE key = 'k'").Scan(&value))
	require.Equal(t, "kept", value)
}

func TestInitSchema_Idempotent(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	defer conn.Close()

	require.NoError(t, InitSchema(conn, nil))
	_, err = conn.Exec("INSERT INTO kv_store (key, value) VALUES ('note-draft', '{}')")
	require.NoError(t, err)

	require.NoError(t, InitSchema(conn, nil), "running again is a no-op")
	require.Equal(t, CurrentVersion(), schemaVersion(t, conn))

	var updatedAt sql.NullString
	require.NoError(t, conn.QueryRow("SELECT updated_at FROM kv_store WHERE key = 'note-draft'").Scan(&updatedAt))
	require.True(t, updatedAt.Valid)

	var rows int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	require.Equal(t, 1, rows)
}

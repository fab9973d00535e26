package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AppliesOnce(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "data", "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(db, os.DirFS("."), "sql"))
	require.NoError(t, migrate(db, os.DirFS("."), "sql"), "second run is a no-op")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	for _, table := range []string{"users", "games", "stats", "daily_results"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	fsys := fstest.MapFS{
		"sql/001_ok.sql":  {Data: []byte(`CREATE TABLE a (x INTEGER);`)},
		"sql/002_bad.sql": {Data: []byte(`CREATE TABLE b (x INTEGER); NOT SQL;`)},
	}
	err = migrate(db, fsys, "sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_bad.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE name='b'`).Scan(new(string))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

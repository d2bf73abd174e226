package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{Path: ":memory:", Name: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestMigrate_CreatesTradesTable(t *testing.T) {
	db := newTestDB(t)

	var name string
	err := db.Conn().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='trades'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Migrate())
}

func TestSchema_EnforcesSideCheck(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Conn().Exec(`
		INSERT INTO trades (symbol, side, quantity, entry_price, entry_date, is_open)
		VALUES ('AAPL', 'SIDEWAYS', 10, 100.0, 1734252600, 1)
	`)
	assert.Error(t, err)
}

func TestNew_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := New(Config{Path: path, Name: "journal"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	assert.Equal(t, path, db.Path())
	assert.NoError(t, db.WALCheckpoint("TRUNCATE"))
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestWithTransaction_Commit(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO trades (symbol, side, quantity, entry_price, entry_date, is_open)
			VALUES ('AAPL', 'LONG', 10, 100.0, 1734252600, 1)
		`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO trades (symbol, side, quantity, entry_price, entry_date, is_open)
			VALUES ('AAPL', 'LONG', 10, 100.0, 1734252600, 1)
		`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM trades").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RecoversPanic(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

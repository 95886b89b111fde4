package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
// Open pins the pool to one connection, so every query sees the same
// in-memory database.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		tb.Fatalf("creating test database schema: %v", err)
	}

	tb.Cleanup(func() { db.Close() })

	return db
}

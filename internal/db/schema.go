package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Claims reference items and users without foreign keys: the references are
// checked when a claim is created and may dangle afterwards (items can be
// deleted while their claims are kept).
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    phone         TEXT,
    student_id    TEXT,
    image         BLOB,
    image_mime    TEXT,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_student_id
    ON users(student_id) WHERE student_id IS NOT NULL AND student_id <> '';

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    category    TEXT NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('lost', 'found')),
    description TEXT,
    location    TEXT NOT NULL,
    image       BLOB,
    image_mime  TEXT,
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'claimed', 'resolved')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id, created_at);

CREATE TABLE IF NOT EXISTS claims (
    id                   INTEGER PRIMARY KEY,
    item_id              INTEGER NOT NULL,
    claimant_id          INTEGER NOT NULL,
    message              TEXT NOT NULL,
    verification_details TEXT,
    status               TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at          DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_item_claimant ON claims(item_id, claimant_id);
CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims(claimant_id, created_at);

CREATE TABLE IF NOT EXISTS notifications (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL CHECK (kind IN ('contact', 'claim', 'test')),
    recipient  TEXT NOT NULL,
    item_id    INTEGER,
    claim_id   INTEGER,
    sender_id  INTEGER,
    status     TEXT NOT NULL CHECK (status IN ('sent', 'failed', 'skipped')),
    error      TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_item ON notifications(item_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

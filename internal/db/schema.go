package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are stored as UTC
// 'YYYY-MM-DD HH:MM:SS' strings (the CURRENT_TIMESTAMP format) so that SQL
// comparisons against them stay lexicographic.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    price       TEXT NOT NULL,
    category    TEXT NOT NULL CHECK (category IN (
        'furniture', 'kitchen', 'living_room', 'bedroom', 'books',
        'electronics', 'clothing', 'outdoor', 'tools', 'decor', 'other')),
    condition   TEXT NOT NULL CHECK (condition IN ('new', 'like_new', 'good', 'fair', 'parts')),
    pickup_area TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'reserved', 'sold')),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);

CREATE TABLE IF NOT EXISTS item_images (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL REFERENCES items(id),
    url        TEXT NOT NULL,
    sort_order INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_item_images_order ON item_images(item_id, sort_order);

CREATE TABLE IF NOT EXISTS reservations (
    id                  TEXT PRIMARY KEY,
    item_id             TEXT NOT NULL REFERENCES items(id),
    customer_name       TEXT NOT NULL,
    customer_email      TEXT NOT NULL,
    customer_phone      TEXT,
    message             TEXT,
    preferred_pickup_at DATETIME,
    status              TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reservations_email_time ON reservations(customer_email, created_at);
CREATE INDEX IF NOT EXISTS idx_reservations_item ON reservations(item_id);

CREATE TABLE IF NOT EXISTS login_tokens (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    expires_at  DATETIME NOT NULL,
    used_at     DATETIME,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
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

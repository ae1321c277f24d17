// Package index provides SQLite-backed indexing of parsed deck files with
// optional FTS5 full-text search over card content.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS decks (
	path          TEXT PRIMARY KEY,
	deck_id       INTEGER NOT NULL DEFAULT 0,
	checksum      TEXT NOT NULL DEFAULT '',
	note_count    INTEGER NOT NULL DEFAULT 0,
	problem_count INTEGER NOT NULL DEFAULT 0,
	parse_error   TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cards (
	deck_path TEXT NOT NULL,
	ord       INTEGER NOT NULL,
	note_id   INTEGER NOT NULL DEFAULT 0,
	note_type TEXT NOT NULL DEFAULT '',
	fields    TEXT NOT NULL DEFAULT '{}',
	problems  TEXT NOT NULL DEFAULT '[]',
	content   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (deck_path, ord)
);

CREATE INDEX IF NOT EXISTS idx_cards_note_id ON cards(note_id);
CREATE INDEX IF NOT EXISTS idx_cards_note_type ON cards(note_type);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Package index provides the SQLite-backed journey index.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS journeys (
	name       TEXT PRIMARY KEY,
	id         TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	node_count INTEGER NOT NULL DEFAULT 0,
	saved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS journey_nodes (
	journey     TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	node_id     TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL,
	host        TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	visit_count INTEGER NOT NULL DEFAULT 1,
	last_visit  INTEGER NOT NULL DEFAULT 0,
	UNIQUE(journey, seq)
);

CREATE INDEX IF NOT EXISTS idx_journey_nodes_host ON journey_nodes(host);
CREATE INDEX IF NOT EXISTS idx_journey_nodes_category ON journey_nodes(category);
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
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

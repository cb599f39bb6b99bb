// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works.
//
// The original deployment of this app sat on a document database. The record
// kinds map cleanly onto rows: the list-valued fields (skills, techStack)
// are stored as JSON text columns, and the connection relation — which the
// document model kept as two independent per-account arrays — becomes a
// proper relation table with one row per pair (see connection.go).
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" at init time.
	_ "modernc.org/sqlite"

	"github.com/sakif/skillshare/internal/repository"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements repository.Store.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/skillshare.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (used by the tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permissions issue
	// surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// required for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			email          TEXT NOT NULL UNIQUE,
			password       TEXT NOT NULL,
			skills         TEXT NOT NULL DEFAULT '[]',
			theme          TEXT NOT NULL DEFAULT 'light',
			linkedin       TEXT NOT NULL DEFAULT '',
			github_profile TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL REFERENCES accounts(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'Idea',
			tech_stack  TEXT NOT NULL DEFAULT '[]',
			is_deployed INTEGER NOT NULL DEFAULT 0,
			link        TEXT NOT NULL DEFAULT '',
			github_repo TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id           TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			sender_id    TEXT NOT NULL DEFAULT '',
			sender_name  TEXT NOT NULL DEFAULT '',
			message      TEXT NOT NULL,
			type         TEXT NOT NULL DEFAULT 'general',
			status       TEXT NOT NULL DEFAULT 'unread',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
	`)
	if err != nil {
		return fmt.Errorf("creating notifications table: %w", err)
	}

	// One row per connected pair. user_a < user_b (enforced by the CHECK and
	// by orderPair in connection.go), so a pair can only ever exist once and
	// there is no second copy to fall out of sync.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS connections (
			user_a     TEXT NOT NULL,
			user_b     TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_a, user_b),
			CHECK (user_a < user_b)
		);
		CREATE INDEX IF NOT EXISTS idx_connections_user_b ON connections(user_b);
	`)
	if err != nil {
		return fmt.Errorf("creating connections table: %w", err)
	}

	return nil
}

// marshalList encodes a string list as a JSON text column value.
// nil encodes the same as an empty list.
func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

// unmarshalList decodes a JSON text column into a string list.
// An empty column decodes to an empty (non-nil) list.
func unmarshalList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

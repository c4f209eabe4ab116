// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// The pattern throughout this package:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// The sqlite package's init() function registers itself with database/sql as a
	// driver named "sqlite". After this import, sql.Open("sqlite", ...) knows how
	// to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// It implements repository.UserRepository, repository.PlaylistRepository,
// and repository.SongRepository — the tables are too entangled (foreign
// keys, cascades) for separate connection owners to buy anything.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/playlistify.db"  → file-based database (persistent)
//   - ":memory:"             → in-memory database (great for tests, lost on close)
//
// sql.Open() does NOT actually open a connection — it just creates a pool
// manager. We call Ping() to force an immediate connection and surface a bad
// path or permissions issue here instead of on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes. WAL allows
	// concurrent reads WHILE a write is happening — important for a web
	// server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
	// We need them ON: the ON DELETE CASCADE from playlist_song to playlists
	// and songs is what keeps the join table free of orphans.
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
//
// Wherever you call New(), immediately defer Close() — this flushes the WAL
// and releases the file lock even if a panic occurs later.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the four tables.
//
// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every startup.
// For a single-file schema this beats pulling in a migration framework;
// if the schema ever needs versioned changes, golang-migrate is the upgrade
// path.
//
// SCHEMA NOTES:
//   - All primary keys are xid strings generated in Go (sortable, URL-safe).
//   - users.username is UNIQUE — re-registering a taken name is a conflict.
//   - playlist_song's two foreign keys are ON DELETE CASCADE: deleting a
//     playlist (or a song) removes its associations automatically, so the
//     application never cleans up join rows by hand.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS playlists (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_playlists_user_id ON playlists(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating playlists table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS songs (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			artists     TEXT NOT NULL,
			catalog_id  TEXT NOT NULL,
			album_name  TEXT NOT NULL DEFAULT '',
			album_image TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating songs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS playlist_song (
			id          TEXT PRIMARY KEY,
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			song_id     TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_playlist_song_playlist_id ON playlist_song(playlist_id);
	`)
	if err != nil {
		return fmt.Errorf("creating playlist_song table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite doesn't export a typed error for this, so we match the
// SQLite error text ("UNIQUE constraint failed: users.username").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

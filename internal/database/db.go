package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the database connection and provides access to database operations
type DB struct {
	conn *sql.DB
	path string
}

// New opens the database at dbPath, creating it and its directory if needed,
// and applies any pending migrations
func New(dbPath string, walMode bool) (*DB, error) {
	// Ensure the data directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn: conn,
		path: dbPath,
	}

	if walMode {
		if err := db.configureWAL(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to configure WAL mode: %w", err)
		}
	}

	if err := db.runMigrations(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// NewTest creates an in-memory database with the schema applied
func NewTest() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// Every pooled connection would otherwise get its own empty database
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping test database: %w", err)
	}

	db := &DB{
		conn: conn,
		path: ":memory:",
	}

	if err := db.runMigrations(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations on test database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Vacuum rebuilds the database file, reclaiming space left by deleted rows
func (db *DB) Vacuum(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}
	return nil
}

// Path returns the file the database was opened from
func (db *DB) Path() string {
	return db.path
}

// configureWAL enables Write-Ahead Logging so the message log can be written
// from the read loop while commands query it
func (db *DB) configureWAL() error {
	var journalMode string
	err := db.conn.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("failed to enable WAL mode: got %s instead", journalMode)
	}

	// NORMAL is safe in WAL mode
	if _, err := db.conn.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to configure synchronous mode: %w", err)
	}

	// Wait instead of failing with "database is locked"
	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to configure busy timeout: %w", err)
	}

	return nil
}

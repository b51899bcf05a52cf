package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Schema files are named NNN_name.sql with an optional NNN_name.down.sql
//
//go:embed schema/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema step
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// runMigrations applies every migration newer than the recorded version
func (db *DB) runMigrations() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	current, err := db.Version()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := db.inTx(func(tx *sql.Tx) error {
			// dirty until the schema SQL went through
			if _, err := tx.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (?, 1)", m.Version); err != nil {
				return err
			}
			if _, err := tx.Exec(m.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec("UPDATE schema_migrations SET dirty = 0 WHERE version = ?", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Version returns the highest cleanly applied migration, 0 for none
func (db *DB) Version() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations WHERE dirty = 0").Scan(&version)
	return version, err
}

// Rollback reverts the most recent migration using its down file
func (db *DB) Rollback() error {
	current, err := db.Version()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if current == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	i := sort.Search(len(migrations), func(i int) bool { return migrations[i].Version >= current })
	if i == len(migrations) || migrations[i].Version != current {
		return fmt.Errorf("migration %d not found", current)
	}
	m := migrations[i]
	if m.DownSQL == "" {
		return fmt.Errorf("migration %d has no down SQL", current)
	}

	err = db.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.DownSQL); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", current)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to roll back migration %d: %w", current, err)
	}
	return nil
}

func (db *DB) inTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// loadMigrations reads the embedded schema files, sorted by version. Files
// without a numeric prefix and versions without an up file are skipped.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "schema")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		version, name, down, ok := parseMigrationName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}

		content, err := fs.ReadFile(migrationFiles, path.Join("schema", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if down {
			m.DownSQL = string(content)
		} else {
			m.UpSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL != "" {
			migrations = append(migrations, *m)
		}
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// parseMigrationName splits "002_message_retention.down.sql" into its
// version, name and direction
func parseMigrationName(file string) (version int, name string, down bool, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return 0, "", false, false
	}
	base, down = strings.CutSuffix(base, ".down")

	prefix, name, found := strings.Cut(base, "_")
	if !found {
		return 0, "", false, false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", false, false
	}
	return version, name, down, true
}

package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Owner is a nick allowed to run restricted commands. PasswordHash is a
// bcrypt hash, or empty when the owner has no password.
type Owner struct {
	Nick         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AddOwner inserts an owner, leaving an existing one untouched. It reports
// whether a row was added.
func (db *DB) AddOwner(nick string) (bool, error) {
	query := `
		INSERT INTO owners (nick, password_hash, created_at, updated_at)
		VALUES (?, '', ?, ?)
		ON CONFLICT(nick) DO NOTHING
	`
	now := time.Now()
	result, err := db.conn.Exec(query, nick, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to add owner: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveOwner deletes an owner and reports whether one existed
func (db *DB) RemoveOwner(nick string) (bool, error) {
	result, err := db.conn.Exec(`DELETE FROM owners WHERE nick = ?`, nick)
	if err != nil {
		return false, fmt.Errorf("failed to remove owner: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// GetOwner retrieves an owner by nick, case-insensitively. It returns nil
// when there is no such owner.
func (db *DB) GetOwner(nick string) (*Owner, error) {
	query := `
		SELECT nick, password_hash, created_at, updated_at
		FROM owners
		WHERE nick = ?
	`
	owner := &Owner{}
	err := db.conn.QueryRow(query, nick).Scan(
		&owner.Nick,
		&owner.PasswordHash,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return owner, nil
}

// SetOwnerPassword stores hash for an existing owner
func (db *DB) SetOwnerPassword(nick, hash string) error {
	result, err := db.conn.Exec(
		`UPDATE owners SET password_hash = ?, updated_at = ? WHERE nick = ?`,
		hash, time.Now(), nick,
	)
	if err != nil {
		return fmt.Errorf("failed to set owner password: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("owner %s does not exist", nick)
	}
	return nil
}

// ListOwners returns all owners ordered by nick
func (db *DB) ListOwners() ([]*Owner, error) {
	query := `
		SELECT nick, password_hash, created_at, updated_at
		FROM owners
		ORDER BY nick ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []*Owner
	for rows.Next() {
		owner := &Owner{}
		if err := rows.Scan(&owner.Nick, &owner.PasswordHash, &owner.CreatedAt, &owner.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}

	return owners, nil
}

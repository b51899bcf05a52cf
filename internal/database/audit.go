package database

import (
	"fmt"
	"time"
)

// Audit action types
const (
	AuditOwnerAdd    = "owner_add"
	AuditOwnerRemove = "owner_remove"
	AuditVerify      = "verify"
	AuditJoin        = "join"
	AuditPart        = "part"
	AuditNick        = "nick"
	AuditQuit        = "quit"
	AuditPassword    = "password_set"
	AuditKick        = "kick"
	AuditMode        = "mode"
)

// AuditLogEntry represents an entry in the audit log
type AuditLogEntry struct {
	ID            int64
	Timestamp     time.Time
	ActorNick     string
	ActorHostmask string
	ActionType    string
	Target        string
	Details       string
	Result        string
}

// LogAuditAction records an owner action
func (db *DB) LogAuditAction(actorNick, actorHostmask, actionType, target, details, result string) error {
	query := `
		INSERT INTO audit_log (timestamp, actor_nick, actor_hostmask, action_type, target, details, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.Exec(query, time.Now().UTC(), actorNick, actorHostmask, actionType, target, details, result)
	if err != nil {
		return fmt.Errorf("failed to log audit action: %w", err)
	}
	return nil
}

// GetAuditLog retrieves audit log entries, newest first
func (db *DB) GetAuditLog(limit, offset int) ([]*AuditLogEntry, error) {
	return db.queryAuditLog(`
		SELECT id, timestamp, actor_nick, actor_hostmask, action_type, target, details, result
		FROM audit_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
}

// GetAuditLogByActor retrieves audit log entries filtered by actor
func (db *DB) GetAuditLogByActor(actorNick string, limit, offset int) ([]*AuditLogEntry, error) {
	return db.queryAuditLog(`
		SELECT id, timestamp, actor_nick, actor_hostmask, action_type, target, details, result
		FROM audit_log
		WHERE actor_nick = ? COLLATE NOCASE
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`, actorNick, limit, offset)
}

func (db *DB) queryAuditLog(query string, args ...interface{}) ([]*AuditLogEntry, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*AuditLogEntry
	for rows.Next() {
		entry := &AuditLogEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.ActorNick,
			&entry.ActorHostmask,
			&entry.ActionType,
			&entry.Target,
			&entry.Details,
			&entry.Result,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return entries, nil
}

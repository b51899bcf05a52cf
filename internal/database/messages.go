package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yourusername/ircbot/internal/output"
)

// Event types stored alongside regular messages
const (
	EventTypeMessage    = ""       // Regular message (default)
	EventTypeNotice     = "NOTICE" // NOTICE received
	EventTypeAction     = "ACTION" // /me action
	EventTypeJoin       = "JOIN"   // Someone joined a channel
	EventTypePart       = "PART"   // Someone left a channel
	EventTypeNickChange = "NICK"   // Someone changed nick
	EventTypeTopic      = "TOPIC"  // Topic changed
)

// Message represents an IRC message or event
type Message struct {
	ID        int64
	Timestamp time.Time
	Channel   string // Empty for private messages
	Nick      string
	Hostmask  string
	Content   string
	IsBot     bool
	EventType string
}

const messageColumns = "id, timestamp, channel, nick, hostmask, content, is_bot, event_type"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	msg := &Message{}
	err := row.Scan(&msg.ID, &msg.Timestamp, &msg.Channel, &msg.Nick, &msg.Hostmask, &msg.Content, &msg.IsBot, &msg.EventType)
	return msg, err
}

// LogMessage stores a message in the database
func (db *DB) LogMessage(msg *Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	query := `
		INSERT INTO messages (timestamp, channel, nick, hostmask, content, is_bot, event_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.conn.Exec(query, msg.Timestamp.UTC(), msg.Channel, msg.Nick, msg.Hostmask, msg.Content, msg.IsBot, msg.EventType)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	msg.ID = id
	return nil
}

// LogEvent logs a non-message IRC event (join, part, nick change, topic)
func (db *DB) LogEvent(eventType, channel, nick, content string) error {
	return db.LogMessage(&Message{
		Timestamp: time.Now(),
		Channel:   channel,
		Nick:      nick,
		Content:   content,
		EventType: eventType,
	})
}

// GetLastSeen retrieves the most recent entry from nick, case-insensitively.
// It returns nil when the nick was never seen.
func (db *DB) GetLastSeen(nick string) (*Message, error) {
	msg, err := scanMessage(db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages WHERE nick = ? COLLATE NOCASE ORDER BY timestamp DESC, id DESC LIMIT 1",
		nick,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last seen: %w", err)
	}
	return msg, nil
}

// MessageFilter represents filters for querying messages
type MessageFilter struct {
	Channel       string
	Nick          string
	StartTime     time.Time
	EndTime       time.Time
	Limit         int
	EventType     string // Only this event type
	IncludeEvents bool   // When EventType is empty, include events as well as messages
}

// QueryMessages retrieves messages based on filters, newest first
func (db *DB) QueryMessages(filter *MessageFilter) ([]*Message, error) {
	query := "SELECT " + messageColumns + " FROM messages WHERE 1=1"
	var args []any

	if filter.Channel != "" {
		query += " AND channel = ?"
		args = append(args, filter.Channel)
	}

	if filter.Nick != "" {
		query += " AND nick = ? COLLATE NOCASE"
		args = append(args, filter.Nick)
	}

	if !filter.StartTime.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime.UTC())
	}

	if !filter.EndTime.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime.UTC())
	}

	if filter.EventType != "" {
		query += " AND event_type = ?"
		args = append(args, filter.EventType)
	} else if !filter.IncludeEvents {
		query += " AND event_type = ''"
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// CleanupOldMessages deletes messages older than retentionDays and returns
// how many were removed
func (db *DB) CleanupOldMessages(retentionDays int, logger output.Logger) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}

	startTime := time.Now()
	cutoff := startTime.AddDate(0, 0, -retentionDays).UTC()
	logger.Info("Starting message cleanup (retention: %d days)...", retentionDays)

	result, err := db.conn.Exec(`DELETE FROM messages WHERE timestamp < ?`, cutoff)
	if err != nil {
		logger.Error("Message cleanup failed: %v", err)
		return 0, fmt.Errorf("failed to cleanup old messages: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	logger.Success("Message cleanup completed in %.2f seconds: deleted %d messages",
		time.Since(startTime).Seconds(), rowsAffected)

	return rowsAffected, nil
}

package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ChannelUser represents a user in a channel
type ChannelUser struct {
	Channel   string
	Nick      string
	IsOp      bool
	IsHalfop  bool
	IsVoice   bool
	UpdatedAt time.Time
}

// ChannelUserEntry represents a user entry for batch operations
type ChannelUserEntry struct {
	Nick     string
	IsOp     bool
	IsHalfop bool
	IsVoice  bool
}

// Prefix returns the NAMES-style status prefix of the user
func (u ChannelUser) Prefix() string {
	switch {
	case u.IsOp:
		return "@"
	case u.IsHalfop:
		return "%"
	case u.IsVoice:
		return "+"
	}
	return ""
}

// ParseNamesEntry parses one entry of a NAMES reply, such as "@alice" or
// "+bob". Only the ~&@%+ status prefixes are recognized.
func ParseNamesEntry(entry string) ChannelUserEntry {
	var e ChannelUserEntry
	for len(entry) > 0 {
		switch entry[0] {
		case '~', '&', '@':
			e.IsOp = true
		case '%':
			e.IsHalfop = true
		case '+':
			e.IsVoice = true
		default:
			e.Nick = entry
			return e
		}
		entry = entry[1:]
	}
	return e
}

// BotChannel is the bot's view of one channel
type BotChannel struct {
	Channel   string
	IsJoined  bool
	Topic     string
	JoinedAt  *time.Time
	UpdatedAt time.Time
}

// BulkUpsertChannelUsers adds or updates multiple users in a channel in one
// transaction
func (db *DB) BulkUpsertChannelUsers(channel string, users []ChannelUserEntry) error {
	if len(users) == 0 {
		return nil
	}

	channel = strings.ToLower(channel)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO channel_users (channel, nick, is_op, is_halfop, is_voice, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel, nick) DO UPDATE SET
			is_op = excluded.is_op,
			is_halfop = excluded.is_halfop,
			is_voice = excluded.is_voice,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, u := range users {
		if _, err := stmt.Exec(channel, u.Nick, u.IsOp, u.IsHalfop, u.IsVoice, now); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.Nick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearChannelUsers removes all users from a channel
func (db *DB) ClearChannelUsers(channel string) error {
	channel = strings.ToLower(channel)

	_, err := db.conn.Exec(`DELETE FROM channel_users WHERE channel = ?`, channel)
	if err != nil {
		return fmt.Errorf("failed to clear channel users: %w", err)
	}
	return nil
}

// RemoveChannelUser removes nick from one channel
func (db *DB) RemoveChannelUser(channel, nick string) error {
	_, err := db.conn.Exec(`DELETE FROM channel_users WHERE channel = ? AND nick = ?`, strings.ToLower(channel), nick)
	if err != nil {
		return fmt.Errorf("failed to remove channel user: %w", err)
	}
	return nil
}

// RemoveUserFromAllChannels removes nick from every channel, as on QUIT
func (db *DB) RemoveUserFromAllChannels(nick string) error {
	_, err := db.conn.Exec(`DELETE FROM channel_users WHERE nick = ?`, nick)
	if err != nil {
		return fmt.Errorf("failed to remove user from channels: %w", err)
	}
	return nil
}

// RenameChannelUser updates a user's nick in all channels. A stale row for
// newNick is replaced.
func (db *DB) RenameChannelUser(oldNick, newNick string) error {
	_, err := db.conn.Exec(`
		UPDATE OR REPLACE channel_users SET nick = ?, updated_at = ?
		WHERE nick = ?
	`, newNick, time.Now(), oldNick)
	if err != nil {
		return fmt.Errorf("failed to rename channel user: %w", err)
	}
	return nil
}

// GetChannelUsers returns all users in a channel ordered by nick
func (db *DB) GetChannelUsers(channel string) ([]ChannelUser, error) {
	channel = strings.ToLower(channel)

	rows, err := db.conn.Query(`
		SELECT channel, nick, is_op, is_halfop, is_voice, updated_at
		FROM channel_users WHERE channel = ?
		ORDER BY nick
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []ChannelUser
	for rows.Next() {
		var u ChannelUser
		if err := rows.Scan(&u.Channel, &u.Nick, &u.IsOp, &u.IsHalfop, &u.IsVoice, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel users: %w", err)
	}
	return users, nil
}

// SetBotChannelJoined records that the bot joined or left channel. Leaving
// also forgets the channel's users.
func (db *DB) SetBotChannelJoined(channel string, joined bool) error {
	channel = strings.ToLower(channel)
	now := time.Now()

	var joinedAt interface{}
	if joined {
		joinedAt = now
	}

	_, err := db.conn.Exec(`
		INSERT INTO bot_channels (channel, is_joined, joined_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(channel) DO UPDATE SET
			is_joined = excluded.is_joined,
			joined_at = excluded.joined_at,
			updated_at = excluded.updated_at
	`, channel, joined, joinedAt, now)
	if err != nil {
		return fmt.Errorf("failed to set bot channel status: %w", err)
	}

	if !joined {
		return db.ClearChannelUsers(channel)
	}
	return nil
}

// SetBotChannelTopic stores the last known topic of channel
func (db *DB) SetBotChannelTopic(channel, topic string) error {
	channel = strings.ToLower(channel)

	_, err := db.conn.Exec(`
		INSERT INTO bot_channels (channel, topic, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel) DO UPDATE SET
			topic = excluded.topic,
			updated_at = excluded.updated_at
	`, channel, topic, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set channel topic: %w", err)
	}
	return nil
}

// GetBotChannel returns what the bot knows about channel, or nil
func (db *DB) GetBotChannel(channel string) (*BotChannel, error) {
	channel = strings.ToLower(channel)

	var bc BotChannel
	var joinedAt sql.NullTime
	err := db.conn.QueryRow(`
		SELECT channel, is_joined, topic, joined_at, updated_at
		FROM bot_channels WHERE channel = ?
	`, channel).Scan(&bc.Channel, &bc.IsJoined, &bc.Topic, &joinedAt, &bc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bot channel: %w", err)
	}

	if joinedAt.Valid {
		bc.JoinedAt = &joinedAt.Time
	}
	return &bc, nil
}

// ListJoinedChannels returns the channels the bot is currently in
func (db *DB) ListJoinedChannels() ([]string, error) {
	rows, err := db.conn.Query(`SELECT channel FROM bot_channels WHERE is_joined = 1 ORDER BY channel`)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []string
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}
	return channels, nil
}

// ResetBotChannels marks every channel as left and forgets all users. Used
// when a session ends.
func (db *DB) ResetBotChannels() error {
	if _, err := db.conn.Exec(`UPDATE bot_channels SET is_joined = 0, joined_at = NULL`); err != nil {
		return fmt.Errorf("failed to reset bot channels: %w", err)
	}
	if _, err := db.conn.Exec(`DELETE FROM channel_users`); err != nil {
		return fmt.Errorf("failed to clear channel users: %w", err)
	}
	return nil
}

package config

import (
	"strings"
	"time"
)

// Config represents the complete bot configuration
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Bot      BotConfig      `toml:"bot" yaml:"bot"`
	Ident    IdentConfig    `toml:"ident" yaml:"ident"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// ServerConfig contains IRC server connection settings
type ServerConfig struct {
	Address        string `toml:"address" yaml:"address"`
	Port           int    `toml:"port" yaml:"port"`
	Nickname       string `toml:"nickname" yaml:"nickname"`
	ConnectTimeout int    `toml:"connect_timeout" yaml:"connect_timeout"`

	// MaxMessageLength caps the text of one outgoing PRIVMSG; longer
	// replies are split
	MaxMessageLength int `toml:"max_message_length" yaml:"max_message_length"`

	// Reconnect makes the bot dial again after a session ends unexpectedly.
	// The IRC client itself never reconnects.
	Reconnect         bool `toml:"reconnect" yaml:"reconnect"`
	ReconnectDelayMin int  `toml:"reconnect_delay_min" yaml:"reconnect_delay_min"`
	ReconnectDelayMax int  `toml:"reconnect_delay_max" yaml:"reconnect_delay_max"`
}

// BotConfig contains bot behavior settings
type BotConfig struct {
	Channels      []string `toml:"channels" yaml:"channels"`
	Owners        []string `toml:"owners" yaml:"owners"`
	QuitMessage   string   `toml:"quit_message" yaml:"quit_message"`
	Version       string   `toml:"version" yaml:"version"`
	CommandPrefix string   `toml:"command_prefix" yaml:"command_prefix"`

	// PreserveTrailingColons keeps ':' characters inside trailing text.
	// The default (false) strips them from every received trailing part.
	PreserveTrailingColons bool `toml:"preserve_trailing_colons" yaml:"preserve_trailing_colons"`

	RequestTopicOnJoin bool `toml:"request_topic_on_join" yaml:"request_topic_on_join"`
}

// IdentConfig contains settings for the RFC 1413 responder started on connect
type IdentConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Address       string `toml:"address" yaml:"address"`
	AcceptTimeout int    `toml:"accept_timeout" yaml:"accept_timeout"`
	ReadTimeout   int    `toml:"read_timeout" yaml:"read_timeout"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `toml:"path" yaml:"path"`
	WALMode bool   `toml:"wal_mode" yaml:"wal_mode"`

	// RetentionDays bounds the message log; 0 keeps everything
	RetentionDays  int `toml:"retention_days" yaml:"retention_days"`
	VacuumInterval int `toml:"vacuum_interval" yaml:"vacuum_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	ErrorLogPath string `toml:"error_log_path" yaml:"error_log_path"`
	MaxLogSizeMB int    `toml:"max_log_size_mb" yaml:"max_log_size_mb"`
	MaxLogFiles  int    `toml:"max_log_files" yaml:"max_log_files"`
}

// ChannelList returns the configured channels as a comma separated list,
// the form accepted by a single JOIN command
func (c *BotConfig) ChannelList() string {
	return strings.Join(c.Channels, ",")
}

// GetConnectTimeoutDuration returns the dial timeout as a time.Duration
func (c *ServerConfig) GetConnectTimeoutDuration() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

// GetReconnectDelayMinDuration returns the first reconnect delay
func (c *ServerConfig) GetReconnectDelayMinDuration() time.Duration {
	return time.Duration(c.ReconnectDelayMin) * time.Second
}

// GetReconnectDelayMaxDuration returns the reconnect delay ceiling
func (c *ServerConfig) GetReconnectDelayMaxDuration() time.Duration {
	return time.Duration(c.ReconnectDelayMax) * time.Second
}

// GetVacuumIntervalDuration returns the maintenance interval as a time.Duration
func (c *DatabaseConfig) GetVacuumIntervalDuration() time.Duration {
	return time.Duration(c.VacuumInterval) * time.Second
}

// GetAcceptTimeoutDuration returns how long the ident listener waits for a query
func (c *IdentConfig) GetAcceptTimeoutDuration() time.Duration {
	return time.Duration(c.AcceptTimeout) * time.Second
}

// GetReadTimeoutDuration returns the ident receive timeout as a time.Duration
func (c *IdentConfig) GetReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config/bot.toml"
)

// Load reads and parses the configuration file from the specified path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// If path is empty, it uses the default path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s", path)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrCreate attempts to load the configuration file, and if it doesn't exist,
// creates a default configuration file and returns the default config.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Configuration file not found. Creating default configuration at %s\n", path)

		defaultCfg := DefaultConfig()
		if err := CreateDefault(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}

		return defaultCfg, nil
	}

	return Load(path)
}

// CreateDefault writes cfg to path, as YAML or TOML depending on the extension
func CreateDefault(path string, cfg *Config) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	if isYAML(path) {
		encoder := yaml.NewEncoder(f)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		return encoder.Close()
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           "irc.libera.chat",
			Port:              6667,
			Nickname:          "ircbot",
			ConnectTimeout:    30,
			MaxMessageLength:  400,
			Reconnect:         false,
			ReconnectDelayMin: 5,
			ReconnectDelayMax: 300,
		},
		Bot: BotConfig{
			Channels:           []string{},
			Owners:             []string{},
			QuitMessage:        "Leaving",
			Version:            "Undefined version",
			CommandPrefix:      "!",
			RequestTopicOnJoin: true,
		},
		Ident: IdentConfig{
			Enabled:       false,
			Address:       ":113",
			AcceptTimeout: 30,
			ReadTimeout:   2,
		},
		Database: DatabaseConfig{
			Path:           "data/bot.db",
			WALMode:        true,
			RetentionDays:  90,
			VacuumInterval: 86400,
		},
		Logging: LoggingConfig{
			ErrorLogPath: "data/error.log",
			MaxLogSizeMB: 10,
			MaxLogFiles:  5,
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// validate checks that all required configuration fields are present and valid
func validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.Nickname == "" {
		return fmt.Errorf("server.nickname is required")
	}
	if strings.ContainsAny(cfg.Server.Nickname, " ,:\r\n") {
		return fmt.Errorf("server.nickname contains invalid characters: %q", cfg.Server.Nickname)
	}
	if cfg.Server.ConnectTimeout < 0 {
		return fmt.Errorf("server.connect_timeout must be non-negative, got %d", cfg.Server.ConnectTimeout)
	}

	if cfg.Server.MaxMessageLength <= 0 {
		return fmt.Errorf("server.max_message_length must be positive, got %d", cfg.Server.MaxMessageLength)
	}

	if cfg.Server.Reconnect {
		if cfg.Server.ReconnectDelayMin <= 0 {
			return fmt.Errorf("server.reconnect_delay_min must be positive, got %d", cfg.Server.ReconnectDelayMin)
		}
		if cfg.Server.ReconnectDelayMax < cfg.Server.ReconnectDelayMin {
			return fmt.Errorf("server.reconnect_delay_max (%d) must not be below reconnect_delay_min (%d)",
				cfg.Server.ReconnectDelayMax, cfg.Server.ReconnectDelayMin)
		}
	}

	for _, ch := range cfg.Bot.Channels {
		if strings.TrimSpace(ch) == "" {
			return fmt.Errorf("bot.channels must not contain empty entries")
		}
	}
	if cfg.Bot.CommandPrefix == "" {
		return fmt.Errorf("bot.command_prefix is required")
	}

	if cfg.Ident.Enabled {
		if cfg.Ident.Address == "" {
			return fmt.Errorf("ident.address is required when ident is enabled")
		}
		if cfg.Ident.AcceptTimeout <= 0 {
			return fmt.Errorf("ident.accept_timeout must be positive, got %d", cfg.Ident.AcceptTimeout)
		}
		if cfg.Ident.ReadTimeout <= 0 {
			return fmt.Errorf("ident.read_timeout must be positive, got %d", cfg.Ident.ReadTimeout)
		}
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retention_days must be non-negative, got %d", cfg.Database.RetentionDays)
	}
	if cfg.Database.VacuumInterval < 0 {
		return fmt.Errorf("database.vacuum_interval must be non-negative, got %d", cfg.Database.VacuumInterval)
	}

	if cfg.Logging.MaxLogSizeMB <= 0 {
		return fmt.Errorf("logging.max_log_size_mb must be positive, got %d", cfg.Logging.MaxLogSizeMB)
	}
	if cfg.Logging.MaxLogFiles <= 0 {
		return fmt.Errorf("logging.max_log_files must be positive, got %d", cfg.Logging.MaxLogFiles)
	}

	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ARCHITECTURAL DISCOVERY: Configuration layer serves as system-wide settings coordinator
// Clean separation between configuration management and business logic
type Config struct {
	HTTP      *HTTPConfig      `json:"http"`
	Chat      *ChatConfig      `json:"chat"`
	Storage   *StorageConfig   `json:"storage"`
	WebSocket *WebSocketConfig `json:"websocket"`
}

// HTTPConfig covers the listener and the static client hosting
type HTTPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	PublicDir    string        `json:"public_dir"`
}

// ChatConfig holds the moderation and abuse-control constants
// FUNCTIONAL DISCOVERY: These mirror the fixed constants of the original
// deployment but are named options so tests and operators can vary them
type ChatConfig struct {
	Password      string        `json:"password"`
	BanDuration   time.Duration `json:"ban_duration"`
	SpamThreshold int           `json:"spam_threshold"`
	SpamWindow    time.Duration `json:"spam_window"`
}

// StorageConfig selects and locates the persistence backend
type StorageConfig struct {
	Backend      string `json:"backend"` // "json" or "sqlite"
	AccountsPath string `json:"accounts_path"`
	MessagesPath string `json:"messages_path"`
	SQLitePath   string `json:"sqlite_path"`
}

// WebSocketConfig tunes connection lifecycle timing
type WebSocketConfig struct {
	PingInterval time.Duration `json:"ping_interval"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	BufferSize   int           `json:"buffer_size"`
}

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns the settings the original deployment ran with:
// port 3000, shared password "1", 5-minute bans, 5 messages per 10 seconds
func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			PublicDir:    "./public",
		},
		Chat: &ChatConfig{
			Password:      "1",
			BanDuration:   5 * time.Minute,
			SpamThreshold: 5,
			SpamWindow:    10 * time.Second,
		},
		Storage: &StorageConfig{
			Backend:      BackendJSON,
			AccountsPath: "./data/accounts.json",
			MessagesPath: "./data/messages.json",
			SQLitePath:   "./data/mfchat.db",
		},
		WebSocket: &WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
			BufferSize:   100,
		},
	}
}

// Validate ensures the configuration can actually run
// FUNCTIONAL DISCOVERY: Comprehensive validation prevents invalid system
// configurations from surfacing as confusing runtime failures
func (c *Config) Validate() error {
	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP read timeout must be positive")
	}
	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP write timeout must be positive")
	}

	if c.Chat == nil {
		return fmt.Errorf("chat configuration is required")
	}
	if c.Chat.Password == "" {
		return fmt.Errorf("chat password cannot be empty")
	}
	if c.Chat.BanDuration <= 0 {
		return fmt.Errorf("ban duration must be positive")
	}
	if c.Chat.SpamThreshold <= 0 {
		return fmt.Errorf("spam threshold must be positive")
	}
	if c.Chat.SpamWindow <= 0 {
		return fmt.Errorf("spam window must be positive")
	}

	if c.Storage == nil {
		return fmt.Errorf("storage configuration is required")
	}
	switch c.Storage.Backend {
	case BackendJSON:
		if c.Storage.AccountsPath == "" || c.Storage.MessagesPath == "" {
			return fmt.Errorf("JSON backend requires accounts and messages paths")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLite backend requires a database path")
		}
	default:
		return fmt.Errorf("storage backend must be %q or %q", BackendJSON, BackendSQLite)
	}

	if c.WebSocket == nil {
		return fmt.Errorf("WebSocket configuration is required")
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("WebSocket ping interval must be positive")
	}
	if c.WebSocket.ReadTimeout <= 0 {
		return fmt.Errorf("WebSocket read timeout must be positive")
	}
	if c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("WebSocket write timeout must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("WebSocket buffer size must be positive")
	}

	return nil
}

// LoadFromEnv overlays MFCHAT_* environment variables onto the defaults
// FUNCTIONAL DISCOVERY: Environment variables override defaults with fallback,
// supporting containerized deployments without a config file
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if port := os.Getenv("MFCHAT_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.HTTP.Port = p
		}
	}
	if host := os.Getenv("MFCHAT_HTTP_HOST"); host != "" {
		config.HTTP.Host = host
	}
	if publicDir := os.Getenv("MFCHAT_PUBLIC_DIR"); publicDir != "" {
		config.HTTP.PublicDir = publicDir
	}

	if password := os.Getenv("MFCHAT_CHAT_PASSWORD"); password != "" {
		config.Chat.Password = password
	}
	if banDuration := os.Getenv("MFCHAT_BAN_DURATION"); banDuration != "" {
		if d, err := time.ParseDuration(banDuration); err == nil {
			config.Chat.BanDuration = d
		}
	}
	if threshold := os.Getenv("MFCHAT_SPAM_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			config.Chat.SpamThreshold = n
		}
	}
	if window := os.Getenv("MFCHAT_SPAM_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			config.Chat.SpamWindow = d
		}
	}

	if backend := os.Getenv("MFCHAT_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}
	if accountsPath := os.Getenv("MFCHAT_ACCOUNTS_PATH"); accountsPath != "" {
		config.Storage.AccountsPath = accountsPath
	}
	if messagesPath := os.Getenv("MFCHAT_MESSAGES_PATH"); messagesPath != "" {
		config.Storage.MessagesPath = messagesPath
	}
	if sqlitePath := os.Getenv("MFCHAT_SQLITE_PATH"); sqlitePath != "" {
		config.Storage.SQLitePath = sqlitePath
	}

	return config
}

// ConfigFile mirrors Config for JSON parsing with duration strings
// FUNCTIONAL DISCOVERY: Separate struct for file parsing so durations can be
// written as "5m" / "10s" instead of nanosecond integers
type ConfigFile struct {
	HTTP      *HTTPConfigFile      `json:"http"`
	Chat      *ChatConfigFile      `json:"chat"`
	Storage   *StorageConfig       `json:"storage"`
	WebSocket *WebSocketConfigFile `json:"websocket"`
}

type HTTPConfigFile struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
	PublicDir    string `json:"public_dir"`
}

type ChatConfigFile struct {
	Password      string `json:"password"`
	BanDuration   string `json:"ban_duration"`
	SpamThreshold int    `json:"spam_threshold"`
	SpamWindow    string `json:"spam_window"`
}

type WebSocketConfigFile struct {
	PingInterval string `json:"ping_interval"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
	BufferSize   int    `json:"buffer_size"`
}

// LoadFromFile reads a JSON config file over the defaults
func LoadFromFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile ConfigFile
	if err := json.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filepath, err)
	}

	config := DefaultConfig()

	if configFile.HTTP != nil {
		if configFile.HTTP.Host != "" {
			config.HTTP.Host = configFile.HTTP.Host
		}
		if configFile.HTTP.Port > 0 {
			config.HTTP.Port = configFile.HTTP.Port
		}
		if configFile.HTTP.PublicDir != "" {
			config.HTTP.PublicDir = configFile.HTTP.PublicDir
		}
		applyDuration(&config.HTTP.ReadTimeout, configFile.HTTP.ReadTimeout)
		applyDuration(&config.HTTP.WriteTimeout, configFile.HTTP.WriteTimeout)
	}

	if configFile.Chat != nil {
		if configFile.Chat.Password != "" {
			config.Chat.Password = configFile.Chat.Password
		}
		if configFile.Chat.SpamThreshold > 0 {
			config.Chat.SpamThreshold = configFile.Chat.SpamThreshold
		}
		applyDuration(&config.Chat.BanDuration, configFile.Chat.BanDuration)
		applyDuration(&config.Chat.SpamWindow, configFile.Chat.SpamWindow)
	}

	if configFile.Storage != nil {
		if configFile.Storage.Backend != "" {
			config.Storage.Backend = configFile.Storage.Backend
		}
		if configFile.Storage.AccountsPath != "" {
			config.Storage.AccountsPath = configFile.Storage.AccountsPath
		}
		if configFile.Storage.MessagesPath != "" {
			config.Storage.MessagesPath = configFile.Storage.MessagesPath
		}
		if configFile.Storage.SQLitePath != "" {
			config.Storage.SQLitePath = configFile.Storage.SQLitePath
		}
	}

	if configFile.WebSocket != nil {
		if configFile.WebSocket.BufferSize > 0 {
			config.WebSocket.BufferSize = configFile.WebSocket.BufferSize
		}
		applyDuration(&config.WebSocket.PingInterval, configFile.WebSocket.PingInterval)
		applyDuration(&config.WebSocket.ReadTimeout, configFile.WebSocket.ReadTimeout)
		applyDuration(&config.WebSocket.WriteTimeout, configFile.WebSocket.WriteTimeout)
	}

	// ARCHITECTURAL DISCOVERY: Validate after loading to catch errors early
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filepath, err)
	}

	return config, nil
}

// LoadWithPrecedence resolves configuration as file > environment > defaults
func LoadWithPrecedence(filepath string) *Config {
	config := LoadFromEnv()

	if filepath != "" {
		if fileConfig, err := LoadFromFile(filepath); err == nil {
			config = fileConfig
		}
		// Silently ignore file errors - environment/defaults still work
	}

	return config
}

// applyDuration parses a duration string onto dst, keeping dst on failure
func applyDuration(dst *time.Duration, value string) {
	if value == "" {
		return
	}
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
	}
}

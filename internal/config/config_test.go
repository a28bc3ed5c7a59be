package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config must validate, got %v", err)
	}
	if config.HTTP.Port != 3000 {
		t.Errorf("Expected default port 3000, got %d", config.HTTP.Port)
	}
	if config.Chat.Password != "1" {
		t.Errorf("Expected default password \"1\", got %q", config.Chat.Password)
	}
	if config.Chat.BanDuration != 5*time.Minute {
		t.Errorf("Expected 5-minute ban duration, got %v", config.Chat.BanDuration)
	}
	if config.Chat.SpamThreshold != 5 || config.Chat.SpamWindow != 10*time.Second {
		t.Errorf("Expected 5 messages per 10s, got %d per %v", config.Chat.SpamThreshold, config.Chat.SpamWindow)
	}
	if config.Storage.Backend != BackendJSON {
		t.Errorf("Expected JSON backend by default, got %s", config.Storage.Backend)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("MFCHAT_HTTP_PORT", "8080")
	t.Setenv("MFCHAT_CHAT_PASSWORD", "sesame")
	t.Setenv("MFCHAT_BAN_DURATION", "10m")
	t.Setenv("MFCHAT_SPAM_THRESHOLD", "3")
	t.Setenv("MFCHAT_SPAM_WINDOW", "30s")
	t.Setenv("MFCHAT_STORAGE_BACKEND", "sqlite")
	t.Setenv("MFCHAT_SQLITE_PATH", "/tmp/test.db")

	config := LoadFromEnv()

	if config.HTTP.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", config.HTTP.Port)
	}
	if config.Chat.Password != "sesame" {
		t.Errorf("Expected overridden password, got %q", config.Chat.Password)
	}
	if config.Chat.BanDuration != 10*time.Minute {
		t.Errorf("Expected 10m ban duration, got %v", config.Chat.BanDuration)
	}
	if config.Chat.SpamThreshold != 3 || config.Chat.SpamWindow != 30*time.Second {
		t.Errorf("Expected 3 per 30s, got %d per %v", config.Chat.SpamThreshold, config.Chat.SpamWindow)
	}
	if config.Storage.Backend != BackendSQLite || config.Storage.SQLitePath != "/tmp/test.db" {
		t.Errorf("Expected sqlite backend at /tmp/test.db, got %s at %s", config.Storage.Backend, config.Storage.SQLitePath)
	}
	// Untouched values keep their defaults
	if config.HTTP.Host != "0.0.0.0" {
		t.Errorf("Expected default host, got %s", config.HTTP.Host)
	}
}

func TestLoadFromEnv_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("MFCHAT_HTTP_PORT", "not-a-number")
	t.Setenv("MFCHAT_BAN_DURATION", "soon")

	config := LoadFromEnv()

	if config.HTTP.Port != 3000 {
		t.Errorf("Unparseable port must keep the default, got %d", config.HTTP.Port)
	}
	if config.Chat.BanDuration != 5*time.Minute {
		t.Errorf("Unparseable duration must keep the default, got %v", config.Chat.BanDuration)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
	  "http": {"port": 9000, "public_dir": "./web"},
	  "chat": {"password": "secret", "ban_duration": "2m", "spam_threshold": 10, "spam_window": "5s"},
	  "websocket": {"ping_interval": "15s", "buffer_size": 50}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.HTTP.Port != 9000 || config.HTTP.PublicDir != "./web" {
		t.Errorf("HTTP section not applied: %+v", config.HTTP)
	}
	if config.HTTP.Host != "0.0.0.0" {
		t.Errorf("Unset host must keep the default, got %s", config.HTTP.Host)
	}
	if config.Chat.Password != "secret" || config.Chat.BanDuration != 2*time.Minute {
		t.Errorf("Chat section not applied: %+v", config.Chat)
	}
	if config.Chat.SpamThreshold != 10 || config.Chat.SpamWindow != 5*time.Second {
		t.Errorf("Spam settings not applied: %+v", config.Chat)
	}
	if config.WebSocket.PingInterval != 15*time.Second || config.WebSocket.BufferSize != 50 {
		t.Errorf("WebSocket section not applied: %+v", config.WebSocket)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadFromFile_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"storage": {"backend": "flatfile"}}`), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected validation error for unknown backend")
	}
}

func TestLoadWithPrecedence_FileWinsOverEnv(t *testing.T) {
	t.Setenv("MFCHAT_HTTP_PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"http": {"port": 9000}}`), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := LoadWithPrecedence(path)
	if config.HTTP.Port != 9000 {
		t.Errorf("File must win over environment, got port %d", config.HTTP.Port)
	}
}

func TestLoadWithPrecedence_BrokenFileFallsBackToEnv(t *testing.T) {
	t.Setenv("MFCHAT_HTTP_PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := LoadWithPrecedence(path)
	if config.HTTP.Port != 8080 {
		t.Errorf("Broken file must fall back to environment, got port %d", config.HTTP.Port)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"empty host", func(c *Config) { c.HTTP.Host = "" }},
		{"empty password", func(c *Config) { c.Chat.Password = "" }},
		{"negative ban duration", func(c *Config) { c.Chat.BanDuration = -time.Minute }},
		{"zero spam threshold", func(c *Config) { c.Chat.SpamThreshold = 0 }},
		{"zero spam window", func(c *Config) { c.Chat.SpamWindow = 0 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "flatfile" }},
		{"json backend without paths", func(c *Config) { c.Storage.AccountsPath = "" }},
		{"sqlite backend without path", func(c *Config) {
			c.Storage.Backend = BackendSQLite
			c.Storage.SQLitePath = ""
		}},
		{"zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }},
		{"zero buffer size", func(c *Config) { c.WebSocket.BufferSize = 0 }},
		{"missing chat section", func(c *Config) { c.Chat = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

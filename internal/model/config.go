package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the connection settings for the procurement backend.
type ServerConfig struct {
	// BaseURL is the root URL of the REST API
	// (e.g., https://procurement.corp.example.com/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PollIntervalSec is how often (in seconds) the notification
	// poller re-fetches while a session is active.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// MailboxConfig holds the optional IMAP ingest settings. When Enabled,
// procurement notification emails are folded into the inbox.
type MailboxConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            string `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	TLS             bool   `mapstructure:"tls" yaml:"tls"`
	Folder          string `mapstructure:"folder" yaml:"folder"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Mailbox MailboxConfig `mapstructure:"mailbox" yaml:"mailbox"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// CachePath is the SQLite cache file; empty means the default
	// location next to the config file.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`

	// LogPath is the log file; empty means the default location.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/procure/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "procure", "config.yaml")
}

// DefaultCachePath returns the SQLite cache location used when the
// config does not override it.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "procure", "cache.db")
}

// DefaultLogPath returns the log file location used when the config
// does not override it.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "procure.log")
	}
	return filepath.Join(home, ".config", "procure", "procure.log")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:         "http://localhost:8080/api",
			PollIntervalSec: 30,
		},
		Mailbox: MailboxConfig{
			Enabled:         false,
			Port:            "993",
			TLS:             true,
			Folder:          "INBOX",
			PollIntervalSec: 300,
		},
		Display: DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.base_url", "http://localhost:8080/api")
	v.SetDefault("server.poll_interval_sec", 30)
	v.SetDefault("mailbox.enabled", false)
	v.SetDefault("mailbox.port", "993")
	v.SetDefault("mailbox.tls", true)
	v.SetDefault("mailbox.folder", "INBOX")
	v.SetDefault("mailbox.poll_interval_sec", 300)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Server.PollIntervalSec <= 0 {
		cfg.Server.PollIntervalSec = 30
	}
	if cfg.Mailbox.PollIntervalSec <= 0 {
		cfg.Mailbox.PollIntervalSec = 300
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("display", cfg.Display)
	if cfg.CachePath != "" {
		v.Set("cache_path", cfg.CachePath)
	}
	if cfg.LogPath != "" {
		v.Set("log_path", cfg.LogPath)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

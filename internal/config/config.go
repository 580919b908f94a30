package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.cardlink/config.toml.
type Config struct {
	DefaultSession string `toml:"default_session"`

	API   API   `toml:"api"`
	Poll  Poll  `toml:"poll"`
	Debug Debug `toml:"debug"`
}

// API configures the remote chat backend.
type API struct {
	BaseURL string `toml:"base_url"`
	// TimeoutMS of 0 means no timeout.
	TimeoutMS int `toml:"timeout_ms"`
}

// Poll configures refetch intervals, in milliseconds.
type Poll struct {
	ChatListIntervalMS int `toml:"chat_list_interval_ms"`
	MessagesIntervalMS int `toml:"messages_interval_ms"`
	StarredIntervalMS  int `toml:"starred_interval_ms"`
}

// Debug configures the local observability server.
type Debug struct {
	ListenAddr string `toml:"listen_addr"`
}

// Default returns the built-in configuration. Message polling defaults to
// 10s; anything much faster refetches the full history continuously.
func Default() *Config {
	return &Config{
		DefaultSession: "main",
		API: API{
			BaseURL:   "http://localhost:8080",
			TimeoutMS: 0,
		},
		Poll: Poll{
			ChatListIntervalMS: 1000,
			MessagesIntervalMS: 10000,
			StarredIntervalMS:  1000,
		},
		Debug: Debug{
			ListenAddr: "127.0.0.1:9180",
		},
	}
}

// Load reads config from the given path, filling unset fields with
// defaults. Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DefaultSession == "" {
		c.DefaultSession = def.DefaultSession
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.Poll.ChatListIntervalMS <= 0 {
		c.Poll.ChatListIntervalMS = def.Poll.ChatListIntervalMS
	}
	if c.Poll.MessagesIntervalMS <= 0 {
		c.Poll.MessagesIntervalMS = def.Poll.MessagesIntervalMS
	}
	if c.Poll.StarredIntervalMS <= 0 {
		c.Poll.StarredIntervalMS = def.Poll.StarredIntervalMS
	}
	if c.Debug.ListenAddr == "" {
		c.Debug.ListenAddr = def.Debug.ListenAddr
	}
}

// HTTPTimeout returns the configured API timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.API.TimeoutMS) * time.Millisecond
}

// ChatListInterval returns the chat list poll interval as a duration.
func (c *Config) ChatListInterval() time.Duration {
	return time.Duration(c.Poll.ChatListIntervalMS) * time.Millisecond
}

// MessagesInterval returns the message poll interval as a duration.
func (c *Config) MessagesInterval() time.Duration {
	return time.Duration(c.Poll.MessagesIntervalMS) * time.Millisecond
}

// StarredInterval returns the starred-messages poll interval as a duration.
func (c *Config) StarredInterval() time.Duration {
	return time.Duration(c.Poll.StarredIntervalMS) * time.Millisecond
}

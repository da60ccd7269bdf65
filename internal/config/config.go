package config

import (
	"fmt"
	"time"
)

// Config holds server configuration values. AnnounceRateLimit caps
// POST /api/announce calls per minute; 0 disables the cap.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MailboxSize       int           `mapstructure:"mailbox_size" yaml:"mailbox_size"`
	MaxLineBytes      int           `mapstructure:"max_line_bytes" yaml:"max_line_bytes"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	JournalPath       string        `mapstructure:"journal_path" yaml:"journal_path"`
	AnnounceRateLimit int           `mapstructure:"announce_rate_limit" yaml:"announce_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":9000",
		HTTPAddr:          ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		WriteTimeout:      10 * time.Second,
		MailboxSize:       20,
		MaxLineBytes:      4096,
		LogLevel:          "info",
		LogFormat:         "console",
		AnnounceRateLimit: 30,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MailboxSize != 0 {
		c.MailboxSize = other.MailboxSize
	}
	if other.MaxLineBytes != 0 {
		c.MaxLineBytes = other.MaxLineBytes
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.JournalPath != "" {
		c.JournalPath = other.JournalPath
	}
	if other.AnnounceRateLimit != 0 {
		c.AnnounceRateLimit = other.AnnounceRateLimit
	}
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.MailboxSize < 0 {
		return fmt.Errorf("config: mailbox_size must not be negative, got %d", c.MailboxSize)
	}
	if c.AnnounceRateLimit < 0 {
		return fmt.Errorf("config: announce_rate_limit must not be negative, got %d", c.AnnounceRateLimit)
	}
	if c.MaxLineBytes < 0 {
		return fmt.Errorf("config: max_line_bytes must not be negative, got %d", c.MaxLineBytes)
	}
	return nil
}

// Package config provides YAML-based configuration loading for the monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level monitor configuration, loaded from deadman.yaml.
// Secrets may be overridden by environment variables so they stay out of
// the file (DMS_TELEGRAM_TOKEN, DMS_DISCORD_TOKEN, DMS_SLACK_BOT_TOKEN,
// DMS_GITHUB_TOKEN).
type Config struct {
	Owner        int64          `yaml:"owner"`
	Recipients   []int64        `yaml:"recipients"`
	GraceDays    int            `yaml:"grace_days"`
	CheckinWords []string       `yaml:"checkin_words"`
	Schedule     string         `yaml:"schedule"`
	Channels     ChannelsConfig `yaml:"channels"`
	DB           DBConfig       `yaml:"db"`
	Dashboard    DashConfig     `yaml:"dashboard"`
}

// ChannelsConfig holds per-platform credentials and targets.
type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Discord  DiscordConfig  `yaml:"discord"`
	Slack    SlackConfig    `yaml:"slack"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// TelegramConfig configures the Telegram Bot API channel. Telegram is the
// check-in source; its token is always required. BaseURL points at a
// self-hosted Bot API server; empty means api.telegram.org.
type TelegramConfig struct {
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	BaseURL        string `yaml:"base_url"`
}

// DiscordConfig configures an optional Discord alert sink.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig configures an optional Slack alert sink.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// GitHubConfig configures an optional issue-filing alert sink.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// DBConfig holds state-store connection settings. The sqlite driver uses
// Path; the mysql driver uses Host/Port/Database.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// DashConfig holds status dashboard settings. Port 0 disables the server.
type DashConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GracePeriod returns the configured grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GraceDays) * 24 * time.Hour
}

// TelegramTimeout returns the request timeout for Telegram API calls.
func (c *Config) TelegramTimeout() time.Duration {
	return time.Duration(c.Channels.Telegram.TimeoutSeconds) * time.Second
}

// applyEnv overlays secret values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("DMS_TELEGRAM_TOKEN"); v != "" {
		c.Channels.Telegram.Token = v
	}
	if v := os.Getenv("DMS_DISCORD_TOKEN"); v != "" {
		c.Channels.Discord.Token = v
	}
	if v := os.Getenv("DMS_SLACK_BOT_TOKEN"); v != "" {
		c.Channels.Slack.BotToken = v
	}
	if v := os.Getenv("DMS_GITHUB_TOKEN"); v != "" {
		c.Channels.GitHub.Token = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.GraceDays == 0 {
		c.GraceDays = 3
	}
	if len(c.CheckinWords) == 0 {
		c.CheckinWords = []string{"checkin", "/checkin"}
	}
	if c.Schedule == "" {
		c.Schedule = "*/5 * * * *"
	}
	if c.Channels.Telegram.TimeoutSeconds == 0 {
		c.Channels.Telegram.TimeoutSeconds = 10
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Driver == "sqlite" && c.DB.Path == "" {
		c.DB.Path = "deadman.db"
	}
	if c.DB.Driver == "mysql" {
		if c.DB.Host == "" {
			c.DB.Host = "127.0.0.1"
		}
		if c.DB.Port == 0 {
			c.DB.Port = 3306
		}
		if c.DB.Database == "" {
			c.DB.Database = "deadman"
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Owner == 0 {
		errs = append(errs, "owner is required")
	}
	if len(c.Recipients) == 0 {
		errs = append(errs, "at least one recipient is required")
	}
	if c.GraceDays < 0 {
		errs = append(errs, "grace_days must not be negative")
	}
	if c.Channels.Telegram.Token == "" {
		errs = append(errs, "channels.telegram.token is required (set DMS_TELEGRAM_TOKEN)")
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "mysql" {
		errs = append(errs, fmt.Sprintf("db.driver %q is not supported (sqlite, mysql)", c.DB.Driver))
	}
	if dc := c.Channels.Discord; dc.Token != "" && dc.ChannelID == "" {
		errs = append(errs, "channels.discord.channel_id is required when a discord token is set")
	}
	if sl := c.Channels.Slack; sl.BotToken != "" && sl.ChannelID == "" {
		errs = append(errs, "channels.slack.channel_id is required when a slack token is set")
	}
	gh := c.Channels.GitHub
	if gh.Token != "" && (gh.Owner == "" || gh.Repo == "") {
		errs = append(errs, "channels.github.owner and channels.github.repo are required when a github token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

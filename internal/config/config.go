package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes environment overrides, e.g. REMINDERS_STORAGE__PATH.
const EnvPrefix = "REMINDERS_"

// Config keeps runtime settings.
type Config struct {
	Storage       StorageConfig       `koanf:"storage"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Telegram      TelegramConfig      `koanf:"telegram"`
	Digest        DigestConfig        `koanf:"digest"`
}

type StorageConfig struct {
	Path string `koanf:"path"`
	Key  string `koanf:"key"`
}

type NotificationsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Timezone string `koanf:"timezone"`
}

type TelegramConfig struct {
	Token  string `koanf:"token"`
	ChatID int64  `koanf:"chat_id"`
}

type DigestConfig struct {
	// Interval between digests; 0 disables the periodic digest.
	Interval time.Duration `koanf:"interval"`
	// At sends one digest a day at HH:MM instead of using Interval.
	At string `koanf:"at"`
}

// Load reads defaults, then the YAML file at configPath if it exists, then
// environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}
	configPath = expandPath(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if err := applyLegacyEnv(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Storage.Key = strings.TrimSpace(cfg.Storage.Key)
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	cfg.Digest.At = strings.TrimSpace(cfg.Digest.At)

	return &cfg, nil
}

// applyLegacyEnv honours the unprefixed variables older deployments set.
func applyLegacyEnv(k *koanf.Koanf) error {
	if token := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); token != "" {
		k.Set("telegram.token", token)
	}
	if chat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chat != "" {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID must be a number: %w", err)
		}
		k.Set("telegram.chat_id", id)
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		k.Set("storage.path", dsn)
	}
	if interval := parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))); interval > 0 {
		k.Set("digest.interval", interval.String())
	}
	return nil
}

// Location resolves the notification timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Notifications.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Validate checks settings shared by every mode.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Digest.Interval < 0 {
		return fmt.Errorf("digest.interval must not be negative")
	}
	return nil
}

// ValidateBot checks the settings the Telegram front-end needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (set TELEGRAM_TOKEN or telegram.token)")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat id is required (set TELEGRAM_CHAT_ID or telegram.chat_id)")
	}
	return nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Facility  FacilityConfig  `mapstructure:"facility"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Database  DatabaseConfig  `mapstructure:"database"`
	History   HistoryConfig   `mapstructure:"history"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// MemberConfig holds facility credentials for a single member.
// The order of members in the configuration is the leader priority
// order used by the booking allocator.
type MemberConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// FacilityConfig holds the facility API endpoint and member credentials.
type FacilityConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	Members []MemberConfig    `mapstructure:"members"`
	Aliases map[string]string `mapstructure:"aliases"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// HistoryConfig controls the booking history feature. When disabled the
// bot runs without a database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Limit   int  `mapstructure:"limit"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, FACILITY_BASE_URL, DATABASE_HOST.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Alias lookup is case-insensitive; keys are lowercased once here.
	if len(cfg.Facility.Aliases) > 0 {
		lowered := make(map[string]string, len(cfg.Facility.Aliases))
		for k, val := range cfg.Facility.Aliases {
			lowered[strings.ToLower(k)] = val
		}
		cfg.Facility.Aliases = lowered
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("facility.base_url", "https://backbone-web-api.production.uva.delcom.nl")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "squashbot")
	v.SetDefault("database.name", "squashbot")
	v.SetDefault("database.pool_size", 5)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.limit", 10)
}

// Validate checks invariants the rest of the application relies on.
// Member usernames must be unique: the allocator assigns one court per
// leader and a duplicate username would let one identity lead two groups.
func (c *Config) Validate() error {
	if c.Facility.BaseURL == "" {
		return fmt.Errorf("facility.base_url is required")
	}
	seen := make(map[string]bool, len(c.Facility.Members))
	for i, m := range c.Facility.Members {
		if m.Username == "" || m.Password == "" {
			return fmt.Errorf("facility.members[%d]: username and password are required", i)
		}
		if seen[m.Username] {
			return fmt.Errorf("facility.members: duplicate username %q", m.Username)
		}
		seen[m.Username] = true
	}
	return nil
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}

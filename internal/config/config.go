// Package config defines the top-level configuration for the mission monitor
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/depth"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MOONLANDER_* environment variables.
type Config struct {
	Coinbase CoinbaseConfig `toml:"coinbase"`
	Missions MissionsConfig `toml:"missions"`
	Depth    DepthConfig    `toml:"depth"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// CoinbaseConfig holds Advanced Trade API credentials and client limits.
// APISecret is either a legacy HMAC secret or a PEM-encoded EC private key.
type CoinbaseConfig struct {
	APIKey              string  `toml:"api_key"`
	APISecret           string  `toml:"api_secret"`
	EncryptedSecretPath string  `toml:"encrypted_secret_path"`
	SecretPassword      string  `toml:"secret_password"`
	BaseURL             string  `toml:"base_url"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
	BookLevels          int     `toml:"book_levels"`
}

// MissionsConfig controls the refresh loop and history window.
type MissionsConfig struct {
	PollInterval           duration `toml:"poll_interval"`
	HistoryLimit           int      `toml:"history_limit"`
	HistoryFetchMultiplier int      `toml:"history_fetch_multiplier"`
	Timezone               string   `toml:"timezone"`
}

// Location resolves Timezone. "Local" and the empty string map to time.Local.
func (m MissionsConfig) Location() (*time.Location, error) {
	if m.Timezone == "" || strings.EqualFold(m.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(m.Timezone)
}

// DepthConfig bounds the order-book depth layout attached to each mission.
type DepthConfig struct {
	TotalSlots           int     `toml:"total_slots"`
	MinSlotsPerSide      int     `toml:"min_slots_per_side"`
	MinSpacingPct        float64 `toml:"min_spacing_pct"`
	MinSeparation        float64 `toml:"min_separation"`
	MaxPlacementAttempts int     `toml:"max_placement_attempts"`
	AskCeilingRatio      float64 `toml:"ask_ceiling_ratio"`
	BidFloorRatio        float64 `toml:"bid_floor_ratio"`
	PositionMargin       float64 `toml:"position_margin"`
}

// Layout converts the section into the depth package's Config.
func (d DepthConfig) Layout() depth.Config {
	return depth.Config{
		TotalSlots:           d.TotalSlots,
		MinSlotsPerSide:      d.MinSlotsPerSide,
		MinSpacingPct:        d.MinSpacingPct,
		MinSeparation:        d.MinSeparation,
		MaxPlacementAttempts: d.MaxPlacementAttempts,
		AskCeilingRatio:      decimal.NewFromFloat(d.AskCeilingRatio),
		BidFloorRatio:        decimal.NewFromFloat(d.BidFloorRatio),
		PositionMargin:       d.PositionMargin,
	}
}

// PostgresConfig holds PostgreSQL connection parameters for the landing store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool   `toml:"enabled"`
	Addr         string `toml:"addr"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"pool_size"`
	MaxRetries   int    `toml:"max_retries"`
	TLSEnabled   bool   `toml:"tls_enabled"`
	StreamMaxLen int64  `toml:"stream_max_len"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters. An empty APIKey disables
// authentication; RateLimitPerMinute <= 0 disables per-IP rate limiting.
type ServerConfig struct {
	Enabled            bool     `toml:"enabled"`
	Port               int      `toml:"port"`
	CORSOrigins        []string `toml:"cors_origins"`
	APIKey             string   `toml:"api_key"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Coinbase: CoinbaseConfig{
			BaseURL:           "https://api.coinbase.com",
			RequestsPerSecond: 10,
			BookLevels:        50,
		},
		Missions: MissionsConfig{
			PollInterval:           duration{30 * time.Second},
			HistoryLimit:           5,
			HistoryFetchMultiplier: 5,
			Timezone:               "Local",
		},
		Depth: DepthConfig{
			TotalSlots:           24,
			MinSlotsPerSide:      3,
			MinSpacingPct:        4,
			MinSeparation:        5,
			MaxPlacementAttempts: 12,
			AskCeilingRatio:      1.2,
			BidFloorRatio:        0.8,
			PositionMargin:       20,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "moonlander",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Addr:         "localhost:6379",
			PoolSize:     10,
			MaxRetries:   3,
			StreamMaxLen: 1000,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "moonlander-snapshots",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:            true,
			Port:               8000,
			CORSOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMinute: 120,
		},
		Notify: NotifyConfig{
			Events: []string{"landing_success", "landing_crash", "landing_aborted"},
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

// PollInterval exposes the decoded refresh interval.
func (c *Config) PollInterval() time.Duration {
	return c.Missions.PollInterval.Duration
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"once":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, once)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Coinbase
	if c.Coinbase.APIKey == "" {
		errs = append(errs, "coinbase: api_key must be set")
	}
	if c.Coinbase.APISecret == "" && c.Coinbase.EncryptedSecretPath == "" {
		errs = append(errs, "coinbase: either api_secret or encrypted_secret_path must be set")
	}
	if c.Coinbase.EncryptedSecretPath != "" && c.Coinbase.SecretPassword == "" {
		errs = append(errs, "coinbase: secret_password is required when encrypted_secret_path is set")
	}
	if c.Coinbase.BaseURL == "" {
		errs = append(errs, "coinbase: base_url must not be empty")
	}
	if c.Coinbase.RequestsPerSecond <= 0 {
		errs = append(errs, "coinbase: requests_per_second must be > 0")
	}
	if c.Coinbase.BookLevels < 1 {
		errs = append(errs, "coinbase: book_levels must be >= 1")
	}

	// Missions
	if c.Missions.PollInterval.Duration <= 0 {
		errs = append(errs, "missions: poll_interval must be > 0")
	}
	if c.Missions.HistoryLimit < 1 {
		errs = append(errs, "missions: history_limit must be >= 1")
	}
	if c.Missions.HistoryFetchMultiplier < 1 {
		errs = append(errs, "missions: history_fetch_multiplier must be >= 1")
	}
	if _, err := c.Missions.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("missions: unknown timezone %q", c.Missions.Timezone))
	}

	// Depth
	if c.Depth.TotalSlots < 2*c.Depth.MinSlotsPerSide {
		errs = append(errs, "depth: total_slots must be at least twice min_slots_per_side")
	}
	if c.Depth.MinSlotsPerSide < 0 {
		errs = append(errs, "depth: min_slots_per_side must be >= 0")
	}
	if c.Depth.MaxPlacementAttempts < 1 {
		errs = append(errs, "depth: max_placement_attempts must be >= 1")
	}
	if c.Depth.AskCeilingRatio <= 1 {
		errs = append(errs, "depth: ask_ceiling_ratio must be > 1")
	}
	if c.Depth.BidFloorRatio <= 0 || c.Depth.BidFloorRatio >= 1 {
		errs = append(errs, "depth: bid_floor_ratio must be between 0 and 1")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Server
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	// Notify: telegram needs both token and chat ID.
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

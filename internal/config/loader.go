package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MOONLANDER_* environment variable overrides, and
// returns the final Config. An empty path skips the file and keeps the
// defaults. The returned Config has NOT been validated; the caller should
// invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides reads well-known MOONLANDER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file. A set variable that does not parse is an error naming it,
// never a silent fallback to the file or default value.
func applyEnvOverrides(cfg *Config) error {
	e := &envOverrides{}
	// ── Coinbase ──
	// CB_API_KEY / CB_API_SECRET are the names used by existing .env files;
	// the prefixed variables take precedence when both are set.
	e.setStr(&cfg.Coinbase.APIKey, "CB_API_KEY")
	e.setStr(&cfg.Coinbase.APISecret, "CB_API_SECRET")
	e.setStr(&cfg.Coinbase.APIKey, "MOONLANDER_COINBASE_API_KEY")
	e.setStr(&cfg.Coinbase.APISecret, "MOONLANDER_COINBASE_API_SECRET")
	e.setStr(&cfg.Coinbase.EncryptedSecretPath, "MOONLANDER_COINBASE_ENCRYPTED_SECRET_PATH")
	e.setStr(&cfg.Coinbase.SecretPassword, "MOONLANDER_COINBASE_SECRET_PASSWORD")
	e.setStr(&cfg.Coinbase.BaseURL, "MOONLANDER_COINBASE_BASE_URL")
	e.setFloat64(&cfg.Coinbase.RequestsPerSecond, "MOONLANDER_COINBASE_REQUESTS_PER_SECOND")
	e.setInt(&cfg.Coinbase.BookLevels, "MOONLANDER_COINBASE_BOOK_LEVELS")

	// ── Missions ──
	e.setDuration(&cfg.Missions.PollInterval, "MOONLANDER_MISSIONS_POLL_INTERVAL")
	e.setInt(&cfg.Missions.HistoryLimit, "MOONLANDER_MISSIONS_HISTORY_LIMIT")
	e.setInt(&cfg.Missions.HistoryFetchMultiplier, "MOONLANDER_MISSIONS_HISTORY_FETCH_MULTIPLIER")
	e.setStr(&cfg.Missions.Timezone, "MOONLANDER_MISSIONS_TIMEZONE")

	// ── Depth ──
	e.setInt(&cfg.Depth.TotalSlots, "MOONLANDER_DEPTH_TOTAL_SLOTS")
	e.setInt(&cfg.Depth.MinSlotsPerSide, "MOONLANDER_DEPTH_MIN_SLOTS_PER_SIDE")
	e.setFloat64(&cfg.Depth.MinSpacingPct, "MOONLANDER_DEPTH_MIN_SPACING_PCT")
	e.setFloat64(&cfg.Depth.MinSeparation, "MOONLANDER_DEPTH_MIN_SEPARATION")
	e.setInt(&cfg.Depth.MaxPlacementAttempts, "MOONLANDER_DEPTH_MAX_PLACEMENT_ATTEMPTS")
	e.setFloat64(&cfg.Depth.AskCeilingRatio, "MOONLANDER_DEPTH_ASK_CEILING_RATIO")
	e.setFloat64(&cfg.Depth.BidFloorRatio, "MOONLANDER_DEPTH_BID_FLOOR_RATIO")
	e.setFloat64(&cfg.Depth.PositionMargin, "MOONLANDER_DEPTH_POSITION_MARGIN")

	// ── Postgres ──
	e.setBool(&cfg.Postgres.Enabled, "MOONLANDER_POSTGRES_ENABLED")
	e.setStr(&cfg.Postgres.DSN, "MOONLANDER_POSTGRES_DSN")
	e.setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	e.setStr(&cfg.Postgres.Host, "MOONLANDER_POSTGRES_HOST")
	e.setInt(&cfg.Postgres.Port, "MOONLANDER_POSTGRES_PORT")
	e.setStr(&cfg.Postgres.Database, "MOONLANDER_POSTGRES_DATABASE")
	e.setStr(&cfg.Postgres.User, "MOONLANDER_POSTGRES_USER")
	e.setStr(&cfg.Postgres.Password, "MOONLANDER_POSTGRES_PASSWORD")
	e.setStr(&cfg.Postgres.SSLMode, "MOONLANDER_POSTGRES_SSL_MODE")
	e.setInt(&cfg.Postgres.PoolMaxConns, "MOONLANDER_POSTGRES_POOL_MAX_CONNS")
	e.setInt(&cfg.Postgres.PoolMinConns, "MOONLANDER_POSTGRES_POOL_MIN_CONNS")
	e.setBool(&cfg.Postgres.RunMigrations, "MOONLANDER_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	e.setBool(&cfg.Redis.Enabled, "MOONLANDER_REDIS_ENABLED")
	e.setStr(&cfg.Redis.Addr, "MOONLANDER_REDIS_ADDR")
	e.setStr(&cfg.Redis.Password, "MOONLANDER_REDIS_PASSWORD")
	e.setInt(&cfg.Redis.DB, "MOONLANDER_REDIS_DB")
	e.setInt(&cfg.Redis.PoolSize, "MOONLANDER_REDIS_POOL_SIZE")
	e.setInt(&cfg.Redis.MaxRetries, "MOONLANDER_REDIS_MAX_RETRIES")
	e.setBool(&cfg.Redis.TLSEnabled, "MOONLANDER_REDIS_TLS_ENABLED")
	e.setInt64(&cfg.Redis.StreamMaxLen, "MOONLANDER_REDIS_STREAM_MAX_LEN")

	// ── S3 ──
	e.setBool(&cfg.S3.Enabled, "MOONLANDER_S3_ENABLED")
	e.setStr(&cfg.S3.Endpoint, "MOONLANDER_S3_ENDPOINT")
	e.setStr(&cfg.S3.Region, "MOONLANDER_S3_REGION")
	e.setStr(&cfg.S3.Bucket, "MOONLANDER_S3_BUCKET")
	e.setStr(&cfg.S3.AccessKey, "MOONLANDER_S3_ACCESS_KEY")
	e.setStr(&cfg.S3.SecretKey, "MOONLANDER_S3_SECRET_KEY")
	e.setBool(&cfg.S3.UseSSL, "MOONLANDER_S3_USE_SSL")
	e.setBool(&cfg.S3.ForcePathStyle, "MOONLANDER_S3_FORCE_PATH_STYLE")

	// ── Server ──
	e.setBool(&cfg.Server.Enabled, "MOONLANDER_SERVER_ENABLED")
	e.setInt(&cfg.Server.Port, "MOONLANDER_SERVER_PORT")
	e.setStringSlice(&cfg.Server.CORSOrigins, "MOONLANDER_SERVER_CORS_ORIGINS")
	e.setStr(&cfg.Server.APIKey, "MOONLANDER_SERVER_API_KEY")
	e.setInt(&cfg.Server.RateLimitPerMinute, "MOONLANDER_SERVER_RATE_LIMIT_PER_MINUTE")

	// ── Notify ──
	e.setStr(&cfg.Notify.TelegramToken, "MOONLANDER_NOTIFY_TELEGRAM_TOKEN")
	e.setStr(&cfg.Notify.TelegramChatID, "MOONLANDER_NOTIFY_TELEGRAM_CHAT_ID")
	e.setStr(&cfg.Notify.DiscordWebhookURL, "MOONLANDER_NOTIFY_DISCORD_WEBHOOK_URL")
	e.setStringSlice(&cfg.Notify.Events, "MOONLANDER_NOTIFY_EVENTS")

	// ── Top-level ──
	e.setStr(&cfg.Mode, "MOONLANDER_MODE")
	e.setStr(&cfg.LogLevel, "MOONLANDER_LOG_LEVEL")

	return errors.Join(e.errs...)
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty; parse failures are collected.
// ---------------------------------------------------------------------------

type envOverrides struct {
	errs []error
}

func (e *envOverrides) fail(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
}

func (e *envOverrides) setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (e *envOverrides) setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envOverrides) setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envOverrides) setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envOverrides) setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envOverrides) setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		dst.Duration = d
	}
}

func (e *envOverrides) setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/alanyoungcy/moonlander/internal/blob/s3"
	"github.com/alanyoungcy/moonlander/internal/cache/memory"
	"github.com/alanyoungcy/moonlander/internal/cache/redis"
	"github.com/alanyoungcy/moonlander/internal/config"
	"github.com/alanyoungcy/moonlander/internal/crypto"
	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/notify"
	"github.com/alanyoungcy/moonlander/internal/platform/coinbase"
	"github.com/alanyoungcy/moonlander/internal/server/handler"
	"github.com/alanyoungcy/moonlander/internal/service"
	"github.com/alanyoungcy/moonlander/internal/store/postgres"
)

// Dependencies bundles everything the modes need. Optional backends that are
// disabled in the configuration are left nil; the in-memory cache, bus and
// rate limiter stand in for Redis.
type Dependencies struct {
	Exchange domain.Exchange

	// Caches
	Snapshots   domain.SnapshotCache
	Trend       domain.TrendStore
	SignalBus   domain.SignalBus
	LockManager domain.LockManager
	RateLimiter domain.RateLimiter

	// Persistence
	LandingStore  domain.LandingStore
	LandingReader handler.LandingReader
	Archiver      domain.SnapshotArchiver

	// Notifications
	Notifier *notify.Notifier

	// HealthChecks maps a backend name to its connectivity check.
	HealthChecks map[string]handler.Pinger
}

// snapshotStore is what both cache implementations provide.
type snapshotStore interface {
	domain.SnapshotCache
	domain.TrendStore
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{HealthChecks: make(map[string]handler.Pinger)}

	// --- Exchange ---
	secret, err := crypto.LoadSecret(crypto.SecretConfig{
		RawSecret:     cfg.Coinbase.APISecret,
		EncryptedPath: cfg.Coinbase.EncryptedSecretPath,
		Password:      cfg.Coinbase.SecretPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: coinbase secret: %w", err)
	}
	auth, err := crypto.NewAuthorizer(cfg.Coinbase.APIKey, secret)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: coinbase auth: %w", err)
	}
	deps.Exchange = coinbase.NewClient(cfg.Coinbase.BaseURL, auth, cfg.Coinbase.RequestsPerSecond).WithLogger(logger)

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		store := postgres.NewLandingStore(pgClient.Pool())
		deps.LandingStore = store
		deps.LandingReader = store
		deps.HealthChecks["postgres"] = pgClient
	}

	// --- Redis, or the in-process equivalents ---
	var snapshots snapshotStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		bus := redis.NewSignalBus(redisClient, cfg.Redis.StreamMaxLen)
		snapshots = redis.NewSnapshotCache(redisClient)
		deps.SignalBus = bus
		deps.LockManager = redis.NewLockManager(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		if deps.LandingReader == nil {
			deps.LandingReader = redis.NewLandingLog(bus, service.StreamLandings)
		}
		deps.HealthChecks["redis"] = redisClient
	} else {
		snapshots = memory.NewSnapshotCache()
		deps.SignalBus = memory.NewBus(int(cfg.Redis.StreamMaxLen))
		deps.LockManager = memory.NewLock()
		deps.RateLimiter = memory.NewRateLimiter()
	}
	deps.Snapshots = snapshots
	deps.Trend = snapshots

	// --- S3 snapshot archive ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
		deps.HealthChecks["s3"] = s3Client
	}

	// --- Notifications ---
	deps.Notifier = notify.NewNotifier(
		notify.Senders(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, cfg.Notify.DiscordWebhookURL),
		cfg.Notify.Events,
		logger,
	)

	return deps, cleanup, nil
}

// newPoller assembles the pipeline and the refresh loop around deps.
func newPoller(cfg *config.Config, deps *Dependencies, loc *time.Location, logger *slog.Logger) *service.Poller {
	resolver := service.NewPriceResolver(deps.Exchange, logger)
	missions := service.NewMissionService(deps.Exchange, resolver, cfg.Depth.Layout(), cfg.Coinbase.BookLevels, loc, logger)
	history := service.NewHistoryService(deps.Exchange, cfg.Missions.HistoryLimit, cfg.Missions.HistoryFetchMultiplier, loc, logger)

	// A Notifier with no senders is left out so the tracker skips formatting.
	var notifier service.Notifier
	if deps.Notifier != nil && deps.Notifier.Enabled() {
		notifier = deps.Notifier
	}
	tracker := service.NewLandingTracker(deps.LandingStore, deps.SignalBus, notifier, logger)

	return service.NewPoller(service.NewPipeline(missions, history), deps.Snapshots, cfg.PollInterval(), service.PollerOptions{
		Trend:    deps.Trend,
		Bus:      deps.SignalBus,
		Archiver: deps.Archiver,
		Landings: tracker,
		Lock:     deps.LockManager,
	}, logger)
}

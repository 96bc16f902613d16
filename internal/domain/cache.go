package domain

import (
	"context"
	"time"
)

// SnapshotCache holds the most recent pipeline snapshot.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LatestSnapshot(ctx context.Context) (Snapshot, error)
}

// TrendStore persists the trend state between passes so a restart keeps
// mission orientation.
type TrendStore interface {
	LoadTrend(ctx context.Context) (TrendState, error)
	SaveTrend(ctx context.Context, state TrendState) error
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// RateLimiter admits at most limit requests per key within a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub and durable streams.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

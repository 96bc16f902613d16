package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache and domain.TrendStore.
// The latest snapshot is a JSON string at "<prefix>:snapshot:latest"; the
// trend state is a hash at "<prefix>:trend" keyed by product ID.
type SnapshotCache struct {
	rdb      *redis.Client
	snapKey  string
	trendKey string
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{
		rdb:      c.Underlying(),
		snapKey:  c.Key("snapshot", "latest"),
		trendKey: c.Key("trend"),
	}
}

// SaveSnapshot replaces the stored snapshot.
func (sc *SnapshotCache) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := sc.rdb.Set(ctx, sc.snapKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns domain.ErrNotFound until the first pass has been saved.
func (sc *SnapshotCache) LatestSnapshot(ctx context.Context) (domain.Snapshot, error) {
	data, err := sc.rdb.Get(ctx, sc.snapKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis: latest snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// LoadTrend reads the trend hash. A missing key yields an empty state.
// Entries that fail to decode are skipped and start over from the default
// direction.
func (sc *SnapshotCache) LoadTrend(ctx context.Context) (domain.TrendState, error) {
	vals, err := sc.rdb.HGetAll(ctx, sc.trendKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load trend: %w", err)
	}
	state := make(domain.TrendState, len(vals))
	for product, raw := range vals {
		var p domain.TrendPoint
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		state[product] = p
	}
	return state, nil
}

// SaveTrend atomically replaces the trend hash with state.
func (sc *SnapshotCache) SaveTrend(ctx context.Context, state domain.TrendState) error {
	fields := make(map[string]interface{}, len(state))
	for product, p := range state {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("redis: marshal trend %s: %w", product, err)
		}
		fields[product] = string(data)
	}

	pipe := sc.rdb.TxPipeline()
	pipe.Del(ctx, sc.trendKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, sc.trendKey, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save trend: %w", err)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ domain.SnapshotCache = (*SnapshotCache)(nil)
	_ domain.TrendStore    = (*SnapshotCache)(nil)
)

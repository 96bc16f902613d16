// Package memory provides in-process implementations of the cache and bus
// interfaces, used when Redis is disabled and in tests.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// SnapshotCache keeps the latest snapshot and trend state in memory.
type SnapshotCache struct {
	mu    sync.RWMutex
	snap  domain.Snapshot
	has   bool
	trend domain.TrendState
}

var (
	_ domain.SnapshotCache = (*SnapshotCache)(nil)
	_ domain.TrendStore    = (*SnapshotCache)(nil)
)

// NewSnapshotCache returns an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{trend: make(domain.TrendState)}
}

func (c *SnapshotCache) SaveSnapshot(_ context.Context, snap domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.has = true
	return nil
}

// LatestSnapshot returns domain.ErrNotFound before the first save.
func (c *SnapshotCache) LatestSnapshot(_ context.Context) (domain.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.has {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	return c.snap, nil
}

func (c *SnapshotCache) LoadTrend(_ context.Context) (domain.TrendState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.trend), nil
}

func (c *SnapshotCache) SaveTrend(_ context.Context, state domain.TrendState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trend = maps.Clone(state)
	return nil
}

// Bus is an in-process SignalBus. Publish fans out to current subscribers
// without blocking; a subscriber that falls behind loses messages. Stream
// appends are kept in a bounded ring per stream.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]chan []byte
	streams map[string][][]byte
	maxLen  int
}

var _ domain.SignalBus = (*Bus)(nil)

// NewBus creates a Bus keeping at most streamMaxLen entries per stream.
func NewBus(streamMaxLen int) *Bus {
	if streamMaxLen <= 0 {
		streamMaxLen = 1000
	}
	return &Bus{
		subs:    make(map[string][]chan []byte),
		streams: make(map[string][][]byte),
		maxLen:  streamMaxLen,
	}
}

func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel that is closed when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 64)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[channel]
		for i, c := range subs {
			if c == ch {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (b *Bus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := append(b.streams[stream], payload)
	if len(entries) > b.maxLen {
		entries = entries[len(entries)-b.maxLen:]
	}
	b.streams[stream] = entries
	return nil
}

// Stream returns a copy of the entries appended to stream, oldest first.
func (b *Bus) Stream(stream string) [][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([][]byte, len(b.streams[stream]))
	copy(out, b.streams[stream])
	return out
}

// Lock is a process-local LockManager.
type Lock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

var _ domain.LockManager = (*Lock)(nil)

// NewLock returns an empty lock table.
func NewLock() *Lock {
	return &Lock{held: make(map[string]time.Time)}
}

// Acquire returns domain.ErrLockHeld while another holder's ttl is running.
func (l *Lock) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[key]; ok && time.Now().Before(exp) {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = time.Now().Add(ttl)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

// RateLimiter is a process-local domain.RateLimiter. Each key gets a token
// bucket of limit tokens refilled over window; the bucket's shape is fixed
// by the first call for that key.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

var _ domain.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter returns a limiter with no buckets.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*rate.Limiter)}
}

// Allow consumes one token from key's bucket if one is available.
func (r *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	r.mu.Lock()
	b, ok := r.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		r.buckets[key] = b
	}
	r.mu.Unlock()
	return b.Allow(), nil
}

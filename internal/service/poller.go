package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// PollerLockKey guards the exchange against concurrent pollers.
const PollerLockKey = "lock:moonlander:poller"

// PollerOptions holds the optional collaborators of a Poller. Nil fields are
// skipped.
type PollerOptions struct {
	Trend    domain.TrendStore
	Bus      domain.SignalBus
	Archiver domain.SnapshotArchiver
	Landings *LandingTracker
	Lock     domain.LockManager
}

// Poller repeatedly runs the pipeline and publishes each snapshot.
type Poller struct {
	pipeline *Pipeline
	cache    domain.SnapshotCache
	opts     PollerOptions
	interval time.Duration
	logger   *slog.Logger

	trend domain.TrendState
}

// NewPoller creates a Poller. interval is the pause between passes.
func NewPoller(pipeline *Pipeline, cache domain.SnapshotCache, interval time.Duration, opts PollerOptions, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		pipeline: pipeline,
		cache:    cache,
		opts:     opts,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller")),
		trend:    make(domain.TrendState),
	}
}

// Run executes a pass immediately and then once per interval until ctx is
// cancelled. Pass failures are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "poller started", slog.Duration("interval", p.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if _, err := p.RunOnce(ctx); err != nil && !errors.Is(err, domain.ErrLockHeld) {
				p.logger.ErrorContext(ctx, "pass failed", slog.String("error", err.Error()))
			}
			// Reset after the pass so slow passes never overlap.
			timer.Reset(p.interval)
		}
	}
}

// RunOnce executes a single pass and publishes its snapshot. It returns
// domain.ErrLockHeld when another poller holds the pass lock.
func (p *Poller) RunOnce(ctx context.Context) (domain.Snapshot, error) {
	if p.opts.Lock != nil {
		unlock, err := p.opts.Lock.Acquire(ctx, PollerLockKey, 2*p.interval)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				p.logger.DebugContext(ctx, "another poller holds the lock; skipping pass")
			}
			return domain.Snapshot{}, err
		}
		defer unlock()
	}

	start := time.Now()
	prev := p.loadTrend(ctx)

	// Exchange calls share one deadline matching the lock TTL, so a hung
	// request cannot hold the pass past its lock.
	fetchCtx, cancel := context.WithTimeout(ctx, 2*p.interval)
	snap, next := p.pipeline.Run(fetchCtx, prev)
	cancel()
	p.saveTrend(ctx, next)

	if err := p.cache.SaveSnapshot(ctx, snap); err != nil {
		return snap, fmt.Errorf("poller: save snapshot: %w", err)
	}
	p.publish(ctx, snap)

	if p.opts.Landings != nil {
		if _, err := p.opts.Landings.Track(ctx, snap.History); err != nil {
			p.logger.WarnContext(ctx, "landing tracking failed", slog.String("error", err.Error()))
		}
	}

	if p.opts.Archiver != nil {
		if _, err := p.opts.Archiver.ArchiveSnapshot(ctx, snap); err != nil {
			p.logger.WarnContext(ctx, "snapshot archive failed", slog.String("error", err.Error()))
		}
	}

	p.logger.InfoContext(ctx, "pass complete",
		slog.String("snapshot_id", snap.ID),
		slog.Int("missions", len(snap.Missions)),
		slog.Int("landings", len(snap.History)),
		slog.Duration("duration", time.Since(start)),
	)
	return snap, nil
}

func (p *Poller) loadTrend(ctx context.Context) domain.TrendState {
	if p.opts.Trend == nil {
		return p.trend
	}
	state, err := p.opts.Trend.LoadTrend(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "load trend state failed", slog.String("error", err.Error()))
		return p.trend
	}
	return state
}

func (p *Poller) saveTrend(ctx context.Context, next domain.TrendState) {
	p.trend = next
	if p.opts.Trend == nil {
		return
	}
	if err := p.opts.Trend.SaveTrend(ctx, next); err != nil {
		p.logger.WarnContext(ctx, "save trend state failed", slog.String("error", err.Error()))
	}
}

func (p *Poller) publish(ctx context.Context, snap domain.Snapshot) {
	if p.opts.Bus == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		p.logger.WarnContext(ctx, "encode snapshot failed", slog.String("error", err.Error()))
		return
	}
	if err := p.opts.Bus.Publish(ctx, ChannelMissions, payload); err != nil {
		p.logger.WarnContext(ctx, "publish snapshot failed", slog.String("error", err.Error()))
	}
}

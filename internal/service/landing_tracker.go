package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// Channel and stream names used on the signal bus.
const (
	ChannelMissions = "missions"
	ChannelLandings = "landings"
	StreamLandings  = "landings"
)

// Landing notification event types.
const (
	EventLandingSuccess = "landing_success"
	EventLandingCrash   = "landing_crash"
	EventLandingAborted = "landing_aborted"
)

// Notifier delivers operator notifications.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// LandingTracker detects landings not seen before, persists them, appends
// them to the landing stream and notifies operators. store, bus and notifier
// are optional.
type LandingTracker struct {
	store    domain.LandingStore
	bus      domain.SignalBus
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	seen   map[string]struct{}
	primed bool
}

// NewLandingTracker creates a LandingTracker.
func NewLandingTracker(store domain.LandingStore, bus domain.SignalBus, notifier Notifier, logger *slog.Logger) *LandingTracker {
	return &LandingTracker{
		store:    store,
		bus:      bus,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "landing_tracker")),
		seen:     make(map[string]struct{}),
	}
}

// Track records the landings of one pass and returns those that were new.
// Without a store, the first call only primes the seen set so a restart
// does not replay the visible history as new landings.
func (t *LandingTracker) Track(ctx context.Context, landings []domain.HistoricalMission) ([]domain.HistoricalMission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		fresh []domain.HistoricalMission
		err   error
	)
	for _, l := range landings {
		if _, ok := t.seen[l.ID]; ok {
			continue
		}
		var isNew bool
		if isNew, err = t.isNew(ctx, l); err != nil {
			// Landings stored before the failure are announced below; the
			// failed one stays unseen and is retried next pass.
			break
		}
		t.seen[l.ID] = struct{}{}
		if isNew {
			fresh = append(fresh, l)
		}
	}
	if err == nil {
		t.primed = true
	}

	for _, l := range fresh {
		t.announce(ctx, l)
	}
	return fresh, err
}

func (t *LandingTracker) isNew(ctx context.Context, l domain.HistoricalMission) (bool, error) {
	if t.store == nil {
		return t.primed, nil
	}
	isNew, err := t.store.Upsert(ctx, l)
	if err != nil {
		return false, fmt.Errorf("landing_tracker: upsert %s: %w", l.ID, err)
	}
	return isNew, nil
}

func (t *LandingTracker) announce(ctx context.Context, l domain.HistoricalMission) {
	t.logger.InfoContext(ctx, "new landing",
		slog.String("order_id", l.ID),
		slog.String("product_id", l.ProductID),
		slog.String("outcome", string(l.Outcome)),
		slog.String("profit", l.ProfitDisplay),
	)

	if t.bus != nil {
		payload, err := json.Marshal(l)
		if err == nil {
			if err := t.bus.StreamAppend(ctx, StreamLandings, payload); err != nil {
				t.logger.WarnContext(ctx, "landing stream append failed", slog.String("error", err.Error()))
			}
			if err := t.bus.Publish(ctx, ChannelLandings, payload); err != nil {
				t.logger.WarnContext(ctx, "landing publish failed", slog.String("error", err.Error()))
			}
		}
	}

	if t.notifier != nil {
		event, title := landingEvent(l)
		msg := fmt.Sprintf("%s sold %s at %s\nProceeds: %s\nProfit: %s\nTime: %s",
			l.ProductID, l.SizeDisplay, l.PriceDisplay, l.ProceedsDisplay, l.ProfitDisplay, l.TimeDisplay)
		if err := t.notifier.Notify(ctx, event, title, msg); err != nil {
			t.logger.WarnContext(ctx, "landing notification failed", slog.String("error", err.Error()))
		}
	}
}

func landingEvent(l domain.HistoricalMission) (event, title string) {
	switch l.Outcome {
	case domain.OutcomeSuccess:
		return EventLandingSuccess, "Confirmed landing: " + l.ProductID
	case domain.OutcomeCrashLanded:
		return EventLandingCrash, "Crash landing: " + l.ProductID
	default:
		return EventLandingAborted, "Mission aborted: " + l.ProductID
	}
}

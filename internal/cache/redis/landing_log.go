package redis

import (
	"context"
	"encoding/json"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// LandingLog reads landings back from the bounded landing stream. It serves
// the landing endpoints when no Postgres store is configured; only the most
// recent stream entries are reachable.
type LandingLog struct {
	bus    *SignalBus
	stream string
}

// NewLandingLog creates a LandingLog over stream on bus.
func NewLandingLog(bus *SignalBus, stream string) *LandingLog {
	return &LandingLog{bus: bus, stream: stream}
}

// ListRecent returns landings newest first. Entries that fail to decode are
// skipped.
func (l *LandingLog) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.HistoricalMission, error) {
	want := opts.Offset + opts.Limit
	if opts.Limit <= 0 {
		want = int(l.bus.maxLen)
	}
	payloads, err := l.bus.StreamRecent(ctx, l.stream, int64(want))
	if err != nil {
		return nil, err
	}

	var out []domain.HistoricalMission
	skipped := 0
	for _, p := range payloads {
		var h domain.HistoricalMission
		if err := json.Unmarshal(p, &h); err != nil {
			continue
		}
		if opts.Since != nil && h.FilledAt.Before(*opts.Since) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, h)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

// GetByID scans the stream for the landing with the given sell order ID.
func (l *LandingLog) GetByID(ctx context.Context, id string) (domain.HistoricalMission, error) {
	all, err := l.ListRecent(ctx, domain.ListOpts{})
	if err != nil {
		return domain.HistoricalMission{}, err
	}
	for _, h := range all {
		if h.ID == id {
			return h, nil
		}
	}
	return domain.HistoricalMission{}, domain.ErrNotFound
}

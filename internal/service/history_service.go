package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/history"
)

// HistoryService reconstructs recent landings from filled orders.
type HistoryService struct {
	exchange   domain.Exchange
	limit      int
	multiplier int
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewHistoryService creates a HistoryService returning the limit most recent
// sells. multiplier sizes the fill window fetched for buy matching.
func NewHistoryService(exchange domain.Exchange, limit, multiplier int, loc *time.Location, logger *slog.Logger) *HistoryService {
	if limit <= 0 {
		limit = 5
	}
	if multiplier <= 0 {
		multiplier = 5
	}
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{
		exchange:   exchange,
		limit:      limit,
		multiplier: multiplier,
		loc:        loc,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "history_service")),
	}
}

// Recent returns the most recent landings. Any failure yields an empty list
// and a notice.
func (s *HistoryService) Recent(ctx context.Context) ([]domain.HistoricalMission, string) {
	fills, err := s.exchange.ListFilledOrders(ctx, s.limit*s.multiplier)
	if err != nil {
		s.logger.WarnContext(ctx, "list filled orders failed",
			slog.String("error", err.Error()),
		)
		return []domain.HistoricalMission{}, NoticeExchangeUnavailable
	}
	return history.Reconstruct(fills, s.limit, s.now(), s.loc), ""
}

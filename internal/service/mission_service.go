package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/moonlander/internal/depth"
	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/mission"
)

// NoticeExchangeUnavailable is shown alongside partial results when the
// exchange could not be read.
const NoticeExchangeUnavailable = "Exchange data is temporarily unavailable; showing partial results."

// MissionPass is the open-order half of one pipeline pass.
type MissionPass struct {
	Missions []domain.NormalizedMission
	Trend    domain.TrendState
	Notice   string
}

// MissionService derives NormalizedMissions from the account's open orders.
type MissionService struct {
	exchange   domain.Exchange
	resolver   *PriceResolver
	depthCfg   depth.Config
	bookLevels int
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewMissionService creates a MissionService. bookLevels is the number of
// order-book levels per side fetched for depth layout.
func NewMissionService(
	exchange domain.Exchange,
	resolver *PriceResolver,
	depthCfg depth.Config,
	bookLevels int,
	loc *time.Location,
	logger *slog.Logger,
) *MissionService {
	if bookLevels <= 0 {
		bookLevels = 100
	}
	if loc == nil {
		loc = time.Local
	}
	return &MissionService{
		exchange:   exchange,
		resolver:   resolver,
		depthCfg:   depthCfg,
		bookLevels: bookLevels,
		loc:        loc,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "mission_service")),
	}
}

// Pass runs price resolution, classification, scoring, valuation, trend
// advance and depth layout over the current open orders. prev is not
// modified. A failed order listing yields no missions, the previous trend
// state and a notice.
func (s *MissionService) Pass(ctx context.Context, prev domain.TrendState) MissionPass {
	orders, err := s.exchange.ListOrders(ctx, domain.OrderStatusOpen)
	if err != nil {
		s.logger.WarnContext(ctx, "list open orders failed",
			slog.String("error", err.Error()),
		)
		return MissionPass{
			Missions: []domain.NormalizedMission{},
			Trend:    prev,
			Notice:   NoticeExchangeUnavailable,
		}
	}

	now := s.now()
	prices := newPassPrices(s.resolver)

	missions := make([]domain.NormalizedMission, 0, len(orders))
	for _, o := range orders {
		current := prices.current(ctx, o.BaseAsset())
		m, ok := mission.Build(o, current, now, s.loc)
		if !ok {
			s.logger.DebugContext(ctx, "order skipped",
				slog.String("order_id", o.ID),
				slog.String("style", string(o.Style())),
			)
			continue
		}
		missions = append(missions, m)
	}

	mission.SortNewestFirst(missions)
	missions, next := mission.ApplyTrend(missions, prev)
	s.attachDepth(ctx, missions)

	return MissionPass{Missions: missions, Trend: next}
}

// attachDepth fetches each product's book once and lays out depth points for
// every priced mission on it. A failed fetch leaves that product's missions
// without depth.
func (s *MissionService) attachDepth(ctx context.Context, missions []domain.NormalizedMission) {
	books := make(map[string]*domain.ProductBook)
	for i := range missions {
		m := &missions[i]
		if !m.Current.IsPositive() {
			continue
		}
		book, fetched := books[m.ProductID]
		if !fetched {
			b, err := s.exchange.GetProductBook(ctx, m.ProductID, s.bookLevels)
			if err != nil {
				s.logger.WarnContext(ctx, "depth unavailable",
					slog.String("product_id", m.ProductID),
					slog.String("error", err.Error()),
				)
			} else {
				book = &b
			}
			books[m.ProductID] = book
		}
		if book == nil {
			continue
		}
		layout := depth.Layout(*book, *m, s.depthCfg)
		m.Depth = &layout
	}
}

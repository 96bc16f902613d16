package history

import (
	"slices"
	"time"

	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/mission"
)

// Reconstruct builds the HistoricalMissions of the limit most recent filled
// sells in fills, newest first. fills should be a superset of the sells
// wanted so enough buy candidates are available for matching. Profit is nil
// for sells with no earlier buy on the same product.
func Reconstruct(fills []domain.Order, limit int, now time.Time, loc *time.Location) []domain.HistoricalMission {
	buys := IndexBuys(fills)

	sells := make([]domain.Order, 0, len(fills))
	for _, o := range fills {
		if o.Side == domain.OrderSideSell {
			sells = append(sells, o)
		}
	}
	slices.SortStableFunc(sells, func(a, b domain.Order) int {
		return b.LastFillAt.Compare(a.LastFillAt)
	})
	if limit >= 0 && len(sells) > limit {
		sells = sells[:limit]
	}

	out := make([]domain.HistoricalMission, 0, len(sells))
	for _, s := range sells {
		proceeds := Proceeds(s)
		h := domain.HistoricalMission{
			ID:              s.ID,
			ProductID:       s.ProductID,
			Proceeds:        proceeds,
			Price:           s.AverageFilledPrice,
			Size:            s.FilledSize,
			Fees:            s.TotalFees,
			ProceedsDisplay: mission.FormatUSD(proceeds),
			PriceDisplay:    mission.FormatUSD(s.AverageFilledPrice),
			SizeDisplay:     s.FilledSize.StringFixed(4),
			FeesDisplay:     mission.FormatUSD(s.TotalFees),
			ProfitDisplay:   mission.NotAvailable,
			TimeDisplay:     mission.FormatTimestamp(s.LastFillAt, loc),
			FilledAt:        s.LastFillAt,
			Outcome:         ClassifyOutcome(s),
		}
		if buy, ok := buys.Match(s, now); ok {
			profit := proceeds.Sub(CostBasis(buy))
			h.Profit = &profit
			h.ProfitDisplay = mission.FormatSignedUSD(profit)
			h.MatchedBuyID = buy.ID
		}
		out = append(out, h)
	}
	return out
}

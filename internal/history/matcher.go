package history

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

var sizeTolerance = decimal.RequireFromString("0.01")

// BuyIndex groups filled buys by product, preserving input order (newest
// first as returned by the exchange).
type BuyIndex map[string][]domain.Order

// IndexBuys collects the BUY orders of fills.
func IndexBuys(fills []domain.Order) BuyIndex {
	idx := make(BuyIndex)
	for _, o := range fills {
		if o.Side != domain.OrderSideBuy {
			continue
		}
		idx[o.ProductID] = append(idx[o.ProductID], o)
	}
	return idx
}

// Match finds the buy that most plausibly opened the position closed by
// sell. Only buys filled strictly before the sell qualify. The first buy
// whose size is within 1% of the sell's size wins; otherwise the first
// qualifying buy, which is the most recent one. Buys without a fill time are
// ignored; a sell without one is treated as filled at now.
func (idx BuyIndex) Match(sell domain.Order, now time.Time) (domain.Order, bool) {
	sellAt := sell.LastFillAt
	if sellAt.IsZero() {
		sellAt = now
	}
	tolerance := sell.FilledSize.Mul(sizeTolerance)

	var fallback *domain.Order
	candidates := idx[sell.ProductID]
	for i := range candidates {
		b := &candidates[i]
		if b.LastFillAt.IsZero() || !b.LastFillAt.Before(sellAt) {
			continue
		}
		if b.FilledSize.Sub(sell.FilledSize).Abs().LessThan(tolerance) {
			return *b, true
		}
		if fallback == nil {
			fallback = b
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return domain.Order{}, false
}

// Proceeds is what a sell returned after fees.
func Proceeds(sell domain.Order) decimal.Decimal {
	return sell.FilledSize.Mul(sell.AverageFilledPrice).Sub(sell.TotalFees)
}

// CostBasis is what a buy cost including fees.
func CostBasis(buy domain.Order) decimal.Decimal {
	return buy.FilledSize.Mul(buy.AverageFilledPrice).Add(buy.TotalFees)
}

package mission

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// NextDirection infers the display orientation from the previous point: a
// rising price faces RIGHT, a falling price LEFT, and an unchanged price
// keeps the previous direction. An unseen product starts from price zero
// facing RIGHT.
func NextDirection(prev domain.TrendPoint, seen bool, current decimal.Decimal) domain.Direction {
	prevDir := domain.DirectionRight
	prevPrice := decimal.Zero
	if seen {
		prevPrice = prev.Price
		if prev.Direction != "" {
			prevDir = prev.Direction
		}
	}
	switch {
	case current.GreaterThan(prevPrice):
		return domain.DirectionRight
	case current.LessThan(prevPrice):
		return domain.DirectionLeft
	default:
		return prevDir
	}
}

// ApplyTrend sets the direction of every SELL mission from prev and returns
// the next state. Each product is advanced once per pass, so several sell
// orders on one product share a direction. Products not seen in this pass
// keep their previous point.
func ApplyTrend(missions []domain.NormalizedMission, prev domain.TrendState) ([]domain.NormalizedMission, domain.TrendState) {
	next := make(domain.TrendState, len(prev))
	for pid, p := range prev {
		next[pid] = p
	}

	advanced := make(map[string]domain.Direction)
	for i := range missions {
		m := &missions[i]
		if m.Side != domain.OrderSideSell {
			continue
		}
		dir, ok := advanced[m.ProductID]
		if !ok {
			p, seen := prev[m.ProductID]
			dir = NextDirection(p, seen, m.Current)
			advanced[m.ProductID] = dir
			next[m.ProductID] = domain.TrendPoint{Price: m.Current, Direction: dir}
		}
		m.Direction = dir
		m.Retreating = dir == domain.DirectionLeft
	}
	return missions, next
}

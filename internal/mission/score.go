package mission

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// DefaultHealth is reported when there is not enough data to score.
const DefaultHealth = 50

var (
	hundred     = decimal.NewFromInt(100)
	fifty       = decimal.NewFromInt(50)
	windowRatio = decimal.RequireFromString("0.1")
)

// Score returns the 0-100 health of an order positioned between floor (0)
// and target (100). Results are truncated towards zero after clamping.
//
// With only a floor, a synthetic window of 10% of the floor is used: a SELL
// floor is a protective stop and distance above it fills the upper half of
// the scale, a BUY floor is a breakout trigger approached from below.
func Score(current, target, floor decimal.Decimal, side domain.OrderSide) int {
	if !current.IsPositive() {
		return DefaultHealth
	}

	switch {
	case target.IsPositive() && floor.IsPositive():
		span := target.Sub(floor)
		if span.IsZero() {
			return DefaultHealth
		}
		pct := current.Sub(floor).Div(span).Mul(hundred)
		return clamp(truncate(pct), 0, 100)

	case target.IsPositive():
		return DefaultHealth

	case floor.IsPositive():
		window := floor.Mul(windowRatio)
		if side == domain.OrderSideSell {
			if current.LessThanOrEqual(floor) {
				return 0
			}
			pct := current.Sub(floor).Div(window).Mul(fifty)
			return 50 + min(50, truncate(pct))
		}
		if current.GreaterThanOrEqual(floor) {
			return 100
		}
		pct := decimal.NewFromInt(1).Sub(floor.Sub(current).Div(window)).Mul(hundred)
		return clamp(truncate(pct), 0, 99)
	}

	return DefaultHealth
}

// VisualPosition keeps the mission marker away from the edges of the track.
func VisualPosition(health int) int {
	return clamp(health, 4, 96)
}

// Status maps side and health to the display status.
func Status(side domain.OrderSide, health int) domain.MissionStatus {
	if side == domain.OrderSideBuy {
		return domain.MissionStatusStaging
	}
	switch {
	case health > 50:
		return domain.MissionStatusStable
	case health > 20:
		return domain.MissionStatusUnstable
	default:
		return domain.MissionStatusCritical
	}
}

// truncate drops the fractional part, rounding towards zero. Values far
// outside the int range saturate.
func truncate(d decimal.Decimal) int {
	const bound = 1 << 30
	t := d.Truncate(0)
	if t.GreaterThan(decimal.NewFromInt(bound)) {
		return bound
	}
	if t.LessThan(decimal.NewFromInt(-bound)) {
		return -bound
	}
	return int(t.IntPart())
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

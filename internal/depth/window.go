package depth

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

var (
	hundred     = decimal.NewFromInt(100)
	fifty       = decimal.NewFromInt(50)
	windowRatio = decimal.RequireFromString("0.1")
)

// Window is the price range a mission is visualized over. Zero prices are
// unset.
type Window struct {
	Target  decimal.Decimal
	Floor   decimal.Decimal
	Current decimal.Decimal
	Side    domain.OrderSide
}

// WindowOf returns the window of a derived mission.
func WindowOf(m domain.NormalizedMission) Window {
	return Window{Target: m.Target, Floor: m.Floor, Current: m.Current, Side: m.Side}
}

// Position maps price onto the mission's 0-100 visual scale using the same
// interpolation as the health score, without clamping. It reports false when
// the window has no usable range.
func (w Window) Position(price decimal.Decimal) (float64, bool) {
	switch {
	case w.Target.IsPositive() && w.Floor.IsPositive():
		return interpolate(price, w.Floor, w.Target)

	case w.Target.IsPositive():
		if !w.Current.IsPositive() {
			return 0, false
		}
		return interpolate(price, w.Current, w.Target)

	case w.Floor.IsPositive():
		window := w.Floor.Mul(windowRatio)
		if w.Side == domain.OrderSideSell {
			pos := fifty.Add(price.Sub(w.Floor).Div(window).Mul(fifty))
			return pos.InexactFloat64(), true
		}
		pos := decimal.NewFromInt(1).Sub(w.Floor.Sub(price).Div(window)).Mul(hundred)
		return pos.InexactFloat64(), true
	}
	return 0, false
}

func interpolate(price, lo, hi decimal.Decimal) (float64, bool) {
	span := hi.Sub(lo)
	if span.IsZero() {
		return 0, false
	}
	return price.Sub(lo).Div(span).Mul(hundred).InexactFloat64(), true
}

// Package mission derives the display state of open orders: the
// target/floor/size plan of each order, its health score, valuation and
// trend orientation.
package mission

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// Plan is the normalized (target, floor, size) triple of one order. Zero
// means unset for every field.
type Plan struct {
	Target decimal.Decimal
	Floor  decimal.Decimal
	Size   decimal.Decimal
}

// Scorable reports whether the plan has at least one reference price.
func (p Plan) Scorable() bool {
	return p.Target.IsPositive() || p.Floor.IsPositive()
}

// Classify maps an order's configuration variant onto a Plan. current is the
// resolved unit price of the order's base asset, zero when unknown; plain
// limit orders use it as their floor so progress is measured from "now".
func Classify(o domain.Order, current decimal.Decimal) Plan {
	switch c := o.Config.(type) {
	case domain.LimitConfig:
		return Plan{Target: c.LimitPrice, Floor: current, Size: c.BaseSize}
	case domain.BracketConfig:
		return Plan{Target: c.LimitPrice, Floor: c.StopTriggerPrice, Size: c.BaseSize}
	case domain.StopLimitConfig:
		return Plan{Floor: c.StopPrice, Size: c.BaseSize}
	default:
		return Plan{}
	}
}

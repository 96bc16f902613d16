package mission

import "github.com/shopspring/decimal"

// Valuation is the display value and upside of an order.
type Valuation struct {
	Value  string
	Upside string
}

// Value estimates the current payload value (size x current) and the upside
// to target (size x target - value). Upside stays N/A without a target, which
// is distinct from a measured upside of zero.
func Value(size, current, target decimal.Decimal) Valuation {
	v := Valuation{Value: NotAvailable, Upside: NotAvailable}
	if !size.IsPositive() || !current.IsPositive() {
		return v
	}
	value := size.Mul(current)
	v.Value = FormatUSD(value)
	if target.IsPositive() {
		v.Upside = FormatSignedUSD(size.Mul(target).Sub(value))
	}
	return v
}

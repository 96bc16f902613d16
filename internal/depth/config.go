// Package depth turns an order-book snapshot into a bounded set of
// display points around one mission: asks above the current price become
// resistance, bids below it support.
package depth

import "github.com/shopspring/decimal"

// Config bounds the bucketing and placement of depth points.
type Config struct {
	TotalSlots           int
	MinSlotsPerSide      int
	MinSpacingPct        float64
	MinSeparation        float64
	MaxPlacementAttempts int
	AskCeilingRatio      decimal.Decimal
	BidFloorRatio        decimal.Decimal
	PositionMargin       float64
}

// DefaultConfig returns the standard layout bounds.
func DefaultConfig() Config {
	return Config{
		TotalSlots:           24,
		MinSlotsPerSide:      3,
		MinSpacingPct:        4,
		MinSeparation:        5,
		MaxPlacementAttempts: 12,
		AskCeilingRatio:      decimal.RequireFromString("1.2"),
		BidFloorRatio:        decimal.RequireFromString("0.8"),
		PositionMargin:       20,
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissionStatus is the display state of an open order.
type MissionStatus string

const (
	MissionStatusStaging  MissionStatus = "STAGING"
	MissionStatusStable   MissionStatus = "STABLE"
	MissionStatusUnstable MissionStatus = "UNSTABLE"
	MissionStatusCritical MissionStatus = "CRITICAL"
)

// Direction is the display orientation inferred from the last price move.
type Direction string

const (
	DirectionRight Direction = "RIGHT"
	DirectionLeft  Direction = "LEFT"
)

// Outcome classifies how a filled sell order ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "SUCCESS"
	OutcomeCrashLanded Outcome = "CRASH_LANDED"
	OutcomeAborted     Outcome = "ABORTED"
	OutcomeUnknown     Outcome = "UNKNOWN"
)

// NormalizedMission is the derived view of one open order. Target and Floor
// are zero when unset.
type NormalizedMission struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Side           OrderSide       `json:"side"`
	Style          OrderStyle      `json:"style"`
	Target         decimal.Decimal `json:"target"`
	Floor          decimal.Decimal `json:"floor"`
	Size           decimal.Decimal `json:"size"`
	Current        decimal.Decimal `json:"current"`
	Health         int             `json:"health"`
	TargetDisplay  string          `json:"target_display"`
	FloorDisplay   string          `json:"floor_display"`
	Value          string          `json:"value"`
	Upside         string          `json:"upside"`
	Age            string          `json:"age"`
	CreatedAt      time.Time       `json:"created_at"`
	Status         MissionStatus   `json:"status"`
	Direction      Direction       `json:"direction,omitempty"`
	Retreating     bool            `json:"retreating"`
	VisualPosition int             `json:"visual_position"`
	Depth          *DepthLayout    `json:"depth,omitempty"`
}

// HistoricalMission is the derived view of one filled sell, optionally
// paired with the buy that opened the position. Profit is nil when no
// credible buy match exists.
type HistoricalMission struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	Proceeds        decimal.Decimal  `json:"proceeds"`
	Price           decimal.Decimal  `json:"price"`
	Size            decimal.Decimal  `json:"size"`
	Fees            decimal.Decimal  `json:"fees"`
	Profit          *decimal.Decimal `json:"profit"`
	ProceedsDisplay string           `json:"proceeds_display"`
	PriceDisplay    string           `json:"price_display"`
	SizeDisplay     string           `json:"size_display"`
	FeesDisplay     string           `json:"fees_display"`
	ProfitDisplay   string           `json:"profit_display"`
	TimeDisplay     string           `json:"time_display"`
	FilledAt        time.Time        `json:"filled_at"`
	Outcome         Outcome          `json:"outcome"`
	MatchedBuyID    string           `json:"matched_buy_id,omitempty"`
}

// DepthEntry is one order-book level turned into a display candidate.
// Position is a percentage within the mission's visual range.
type DepthEntry struct {
	Price    decimal.Decimal `json:"price"`
	Size     decimal.Decimal `json:"size"`
	Notional decimal.Decimal `json:"notional"`
	Position float64         `json:"position"`
	Tier     int             `json:"tier"`
}

// DepthSide distinguishes resistance (asks) from support (bids).
type DepthSide string

const (
	DepthSideResistance DepthSide = "resistance"
	DepthSideSupport    DepthSide = "support"
)

// PlacedPoint is a DepthEntry with display coordinates in a 100x100 space.
type PlacedPoint struct {
	DepthEntry
	Side DepthSide `json:"side"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// DepthLayout holds the placed depth points of one mission.
type DepthLayout struct {
	Resistance []PlacedPoint `json:"resistance"`
	Support    []PlacedPoint `json:"support"`
}

// Len returns the number of placed points on both sides.
func (l DepthLayout) Len() int {
	return len(l.Resistance) + len(l.Support)
}

// TrendPoint is the last observed price and inferred direction for a product.
type TrendPoint struct {
	Price     decimal.Decimal `json:"price"`
	Direction Direction       `json:"direction"`
}

// TrendState carries last-seen prices between pipeline passes, keyed by
// product ID. A pass reads the previous state and returns the next one.
type TrendState map[string]TrendPoint

// Snapshot is the complete output of one pipeline pass.
type Snapshot struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Missions    []NormalizedMission `json:"missions"`
	History     []HistoricalMission `json:"history"`
	Notice      string              `json:"notice,omitempty"`
}

// MissionsFor returns the missions of the snapshot that trade productID.
func (s Snapshot) MissionsFor(productID string) []NormalizedMission {
	out := make([]NormalizedMission, 0)
	for _, m := range s.Missions {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

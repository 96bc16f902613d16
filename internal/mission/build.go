package mission

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// Build derives the NormalizedMission of one open order. It returns false
// when the order has neither a target nor a floor and must not be shown.
// current is zero when the price could not be resolved; the mission then
// keeps the default health.
func Build(o domain.Order, current decimal.Decimal, now time.Time, loc *time.Location) (domain.NormalizedMission, bool) {
	plan := Classify(o, current)
	if !plan.Scorable() {
		return domain.NormalizedMission{}, false
	}

	health := Score(current, plan.Target, plan.Floor, o.Side)
	val := Value(plan.Size, current, plan.Target)

	floorDisplay := NotAvailable
	if plan.Floor.IsPositive() {
		floorDisplay = FormatPrice(plan.Floor)
	}

	return domain.NormalizedMission{
		ID:             o.ID,
		ProductID:      o.ProductID,
		Side:           o.Side,
		Style:          o.Style(),
		Target:         plan.Target,
		Floor:          plan.Floor,
		Size:           plan.Size,
		Current:        current,
		Health:         health,
		TargetDisplay:  FormatPrice(plan.Target),
		FloorDisplay:   floorDisplay,
		Value:          val.Value,
		Upside:         val.Upside,
		Age:            FormatAge(o.CreatedAt, now, loc),
		CreatedAt:      o.CreatedAt,
		Status:         Status(o.Side, health),
		VisualPosition: VisualPosition(health),
	}, true
}

// SortNewestFirst orders missions by creation time descending. Missions
// without a creation time sort last.
func SortNewestFirst(missions []domain.NormalizedMission) {
	slices.SortStableFunc(missions, func(a, b domain.NormalizedMission) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

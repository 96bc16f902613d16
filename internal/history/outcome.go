// Package history reconstructs completed sell missions from filled orders:
// how each sell ended and, where a plausible opening buy can be found, the
// realized profit.
package history

import "github.com/alanyoungcy/moonlander/internal/domain"

// ClassifyOutcome maps a filled sell to its mission outcome. A bracket sell
// that filled below its limit price means the stop leg fired.
func ClassifyOutcome(o domain.Order) domain.Outcome {
	switch c := o.Config.(type) {
	case nil:
		return domain.OutcomeUnknown
	case domain.LimitConfig:
		return domain.OutcomeSuccess
	case domain.BracketConfig:
		if o.AverageFilledPrice.GreaterThanOrEqual(c.LimitPrice) {
			return domain.OutcomeSuccess
		}
		return domain.OutcomeCrashLanded
	case domain.StopLimitConfig:
		return domain.OutcomeCrashLanded
	default:
		return domain.OutcomeAborted
	}
}

package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

var t0 = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fill(id, product string, side domain.OrderSide, size, price, fees string, at time.Time, cfg domain.OrderConfig) domain.Order {
	return domain.Order{
		ID:                 id,
		ProductID:          product,
		Side:               side,
		Status:             domain.OrderStatusFilled,
		Config:             cfg,
		FilledSize:         d(size),
		AverageFilledPrice: d(price),
		TotalFees:          d(fees),
		LastFillAt:         at,
	}
}

func TestReconstructProfit(t *testing.T) {
	fills := []domain.Order{
		fill("s1", "XYZ-USD", domain.OrderSideSell, "2.0", "50", "1.0", t0, domain.LimitConfig{LimitPrice: d("50")}),
		fill("b1", "XYZ-USD", domain.OrderSideBuy, "2.0", "40", "0.5", t0.Add(-time.Hour), domain.MarketConfig{}),
	}

	got := Reconstruct(fills, 5, t0.Add(time.Hour), time.UTC)
	require.Len(t, got, 1)

	h := got[0]
	require.NotNil(t, h.Profit)
	assert.True(t, h.Proceeds.Equal(d("99")))
	assert.True(t, h.Profit.Equal(d("18.5")))
	assert.Equal(t, "+$18.50", h.ProfitDisplay)
	assert.Equal(t, "$99.00", h.ProceedsDisplay)
	assert.Equal(t, "2.0000", h.SizeDisplay)
	assert.Equal(t, "2026-02-01 12:00 PM", h.TimeDisplay)
	assert.Equal(t, "b1", h.MatchedBuyID)
	assert.Equal(t, domain.OutcomeSuccess, h.Outcome)
}

func TestReconstructNoEarlierBuy(t *testing.T) {
	fills := []domain.Order{
		fill("b-late", "XYZ-USD", domain.OrderSideBuy, "2", "40", "0", t0.Add(time.Minute), nil),
		fill("b-other", "ABC-USD", domain.OrderSideBuy, "2", "40", "0", t0.Add(-time.Hour), nil),
		fill("s1", "XYZ-USD", domain.OrderSideSell, "2", "50", "0", t0, domain.LimitConfig{}),
	}
	got := Reconstruct(fills, 5, t0, time.UTC)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Profit)
	assert.Equal(t, "N/A", got[0].ProfitDisplay)
	assert.Empty(t, got[0].MatchedBuyID)
}

func TestMatchPrefersSizeThenRecency(t *testing.T) {
	sell := fill("s", "XYZ-USD", domain.OrderSideSell, "1.00", "10", "0", t0, nil)

	t.Run("size match beats recency", func(t *testing.T) {
		idx := IndexBuys([]domain.Order{
			fill("recent", "XYZ-USD", domain.OrderSideBuy, "3", "9", "0", t0.Add(-time.Minute), nil),
			fill("sized", "XYZ-USD", domain.OrderSideBuy, "1.005", "9", "0", t0.Add(-time.Hour), nil),
		})
		b, ok := idx.Match(sell, t0)
		require.True(t, ok)
		assert.Equal(t, "sized", b.ID)
	})

	t.Run("tolerance is strict", func(t *testing.T) {
		idx := IndexBuys([]domain.Order{
			fill("recent", "XYZ-USD", domain.OrderSideBuy, "3", "9", "0", t0.Add(-time.Minute), nil),
			fill("edge", "XYZ-USD", domain.OrderSideBuy, "1.01", "9", "0", t0.Add(-time.Hour), nil),
		})
		b, ok := idx.Match(sell, t0)
		require.True(t, ok)
		assert.Equal(t, "recent", b.ID)
	})

	t.Run("same instant does not qualify", func(t *testing.T) {
		idx := IndexBuys([]domain.Order{
			fill("same", "XYZ-USD", domain.OrderSideBuy, "1", "9", "0", t0, nil),
		})
		_, ok := idx.Match(sell, t0)
		assert.False(t, ok)
	})

	t.Run("buys without fill time are ignored", func(t *testing.T) {
		idx := IndexBuys([]domain.Order{
			fill("untimed", "XYZ-USD", domain.OrderSideBuy, "1", "9", "0", time.Time{}, nil),
		})
		_, ok := idx.Match(sell, t0)
		assert.False(t, ok)
	})

	t.Run("untimed sell matches against now", func(t *testing.T) {
		untimed := fill("s", "XYZ-USD", domain.OrderSideSell, "1", "10", "0", time.Time{}, nil)
		idx := IndexBuys([]domain.Order{
			fill("b", "XYZ-USD", domain.OrderSideBuy, "1", "9", "0", t0, nil),
		})
		b, ok := idx.Match(untimed, t0.Add(time.Second))
		require.True(t, ok)
		assert.Equal(t, "b", b.ID)
	})
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name  string
		price string
		cfg   domain.OrderConfig
		want  domain.Outcome
	}{
		{"limit", "10", domain.LimitConfig{LimitPrice: d("12")}, domain.OutcomeSuccess},
		{"bracket at limit", "120", domain.BracketConfig{LimitPrice: d("120"), StopTriggerPrice: d("80")}, domain.OutcomeSuccess},
		{"bracket above limit", "121", domain.BracketConfig{LimitPrice: d("120")}, domain.OutcomeSuccess},
		{"bracket stopped out", "79.5", domain.BracketConfig{LimitPrice: d("120"), StopTriggerPrice: d("80")}, domain.OutcomeCrashLanded},
		{"stop limit", "500", domain.StopLimitConfig{StopPrice: d("90")}, domain.OutcomeCrashLanded},
		{"market", "10", domain.MarketConfig{}, domain.OutcomeAborted},
		{"unrecognized", "10", domain.UnknownConfig{Kind: "twap"}, domain.OutcomeAborted},
		{"absent", "10", nil, domain.OutcomeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := fill("s", "XYZ-USD", domain.OrderSideSell, "1", tt.price, "0", t0, tt.cfg)
			assert.Equal(t, tt.want, ClassifyOutcome(o))
		})
	}
}

func TestReconstructOrderingAndLimit(t *testing.T) {
	var fills []domain.Order
	for i := range 8 {
		fills = append(fills, fill(
			string(rune('a'+i)), "XYZ-USD", domain.OrderSideSell, "1", "10", "0",
			t0.Add(time.Duration(i)*time.Minute), domain.LimitConfig{},
		))
	}
	fills = append(fills, fill("untimed", "XYZ-USD", domain.OrderSideSell, "1", "10", "0", time.Time{}, nil))

	got := Reconstruct(fills, 3, t0.Add(time.Hour), time.UTC)
	require.Len(t, got, 3)
	assert.Equal(t, "h", got[0].ID)
	assert.Equal(t, "g", got[1].ID)
	assert.Equal(t, "f", got[2].ID)
}

func TestReconstructDeterministic(t *testing.T) {
	fills := []domain.Order{
		fill("s2", "BTC-USD", domain.OrderSideSell, "0.5", "61000", "12", t0, domain.BracketConfig{LimitPrice: d("62000")}),
		fill("s1", "ETH-USD", domain.OrderSideSell, "3", "3100", "4", t0.Add(-time.Hour), domain.LimitConfig{}),
		fill("b2", "BTC-USD", domain.OrderSideBuy, "0.5", "58000", "10", t0.Add(-2*time.Hour), nil),
		fill("b1", "ETH-USD", domain.OrderSideBuy, "2.97", "2900", "3", t0.Add(-3*time.Hour), nil),
		fill("b0", "ETH-USD", domain.OrderSideBuy, "1", "2800", "1", t0.Add(-4*time.Hour), nil),
	}

	first := Reconstruct(fills, 5, t0, time.UTC)
	second := Reconstruct(fills, 5, t0, time.UTC)
	assert.Equal(t, first, second)

	require.Len(t, first, 2)
	assert.Equal(t, domain.OutcomeCrashLanded, first[0].Outcome)
	assert.Equal(t, "b2", first[0].MatchedBuyID)
	assert.Equal(t, "b1", first[1].MatchedBuyID)
}

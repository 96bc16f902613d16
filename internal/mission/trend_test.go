package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

func TestNextDirection(t *testing.T) {
	prev := domain.TrendPoint{Price: d("100"), Direction: domain.DirectionLeft}

	assert.Equal(t, domain.DirectionRight, NextDirection(prev, true, d("101")))
	assert.Equal(t, domain.DirectionLeft, NextDirection(prev, true, d("99")))
	assert.Equal(t, domain.DirectionLeft, NextDirection(prev, true, d("100")))
	assert.Equal(t, domain.DirectionRight, NextDirection(domain.TrendPoint{}, false, d("5")))
	assert.Equal(t, domain.DirectionRight, NextDirection(domain.TrendPoint{}, false, d("0")))
}

func TestApplyTrend(t *testing.T) {
	prev := domain.TrendState{
		"BTC-USD": {Price: d("50000"), Direction: domain.DirectionRight},
		"SOL-USD": {Price: d("20"), Direction: domain.DirectionLeft},
	}
	missions := []domain.NormalizedMission{
		{ID: "a", ProductID: "BTC-USD", Side: domain.OrderSideSell, Current: d("49000")},
		{ID: "b", ProductID: "BTC-USD", Side: domain.OrderSideSell, Current: d("49000")},
		{ID: "c", ProductID: "ETH-USD", Side: domain.OrderSideBuy, Current: d("3000")},
	}

	out, next := ApplyTrend(missions, prev)

	assert.Equal(t, domain.DirectionLeft, out[0].Direction)
	assert.True(t, out[0].Retreating)
	assert.Equal(t, domain.DirectionLeft, out[1].Direction, "same product shares one advance")
	assert.Empty(t, out[2].Direction)
	assert.False(t, out[2].Retreating)

	assert.True(t, next["BTC-USD"].Price.Equal(d("49000")))
	assert.Equal(t, domain.DirectionLeft, next["BTC-USD"].Direction)
	assert.Contains(t, next, "SOL-USD")
	assert.NotContains(t, next, "ETH-USD")
	assert.True(t, prev["BTC-USD"].Price.Equal(d("50000")), "previous state is not mutated")
}

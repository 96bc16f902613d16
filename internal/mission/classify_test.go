package mission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

func TestClassify(t *testing.T) {
	current := d("100")

	t.Run("limit uses current as floor", func(t *testing.T) {
		p := Classify(domain.Order{Config: domain.LimitConfig{BaseSize: d("2"), LimitPrice: d("120")}}, current)
		assert.True(t, p.Target.Equal(d("120")))
		assert.True(t, p.Floor.Equal(current))
		assert.True(t, p.Size.Equal(d("2")))
	})

	t.Run("bracket", func(t *testing.T) {
		p := Classify(domain.Order{Config: domain.BracketConfig{
			BaseSize: d("1.5"), LimitPrice: d("120"), StopTriggerPrice: d("80"),
		}}, current)
		assert.True(t, p.Target.Equal(d("120")))
		assert.True(t, p.Floor.Equal(d("80")))
	})

	t.Run("bracket without stop", func(t *testing.T) {
		p := Classify(domain.Order{Config: domain.BracketConfig{BaseSize: d("1"), LimitPrice: d("120")}}, current)
		assert.True(t, p.Target.Equal(d("120")))
		assert.True(t, p.Floor.IsZero())
		assert.True(t, p.Scorable())
	})

	t.Run("stop limit has no target", func(t *testing.T) {
		p := Classify(domain.Order{Config: domain.StopLimitConfig{
			BaseSize: d("3"), LimitPrice: d("89"), StopPrice: d("90"),
		}}, current)
		assert.True(t, p.Target.IsZero())
		assert.True(t, p.Floor.Equal(d("90")))
		assert.True(t, p.Size.Equal(d("3")))
	})

	for name, cfg := range map[string]domain.OrderConfig{
		"market":  domain.MarketConfig{BaseSize: d("1")},
		"unknown": domain.UnknownConfig{Kind: "twap_limit_gtd"},
		"absent":  nil,
	} {
		t.Run(name+" is excluded", func(t *testing.T) {
			p := Classify(domain.Order{Config: cfg}, current)
			assert.False(t, p.Scorable())
			assert.True(t, p.Size.IsZero())
		})
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	t.Run("bracket sell", func(t *testing.T) {
		o := domain.Order{
			ID:        "o-1",
			ProductID: "XYZ-USD",
			Side:      domain.OrderSideSell,
			Config:    domain.BracketConfig{BaseSize: d("2"), LimitPrice: d("120"), StopTriggerPrice: d("80")},
			CreatedAt: now.Add(-2 * time.Hour),
		}
		m, ok := Build(o, d("100"), now, time.UTC)
		require.True(t, ok)
		assert.Equal(t, 50, m.Health)
		assert.Equal(t, "$120", m.TargetDisplay)
		assert.Equal(t, "$80", m.FloorDisplay)
		assert.Equal(t, "$200.00", m.Value)
		assert.Equal(t, "+$40.00", m.Upside)
		assert.Equal(t, "04:00 PM", m.Age)
		assert.Equal(t, domain.MissionStatusUnstable, m.Status)
		assert.Equal(t, domain.OrderStyleBracket, m.Style)
	})

	t.Run("stop limit sell without price keeps default health", func(t *testing.T) {
		o := domain.Order{
			ProductID: "XYZ-USD",
			Side:      domain.OrderSideSell,
			Config:    domain.StopLimitConfig{BaseSize: d("1"), StopPrice: d("90")},
		}
		m, ok := Build(o, d("0"), now, time.UTC)
		require.True(t, ok)
		assert.Equal(t, DefaultHealth, m.Health)
		assert.Equal(t, NotAvailable, m.Value)
		assert.Equal(t, NotAvailable, m.Age)
	})

	t.Run("market order is skipped", func(t *testing.T) {
		_, ok := Build(domain.Order{Config: domain.MarketConfig{BaseSize: d("1")}}, d("100"), now, time.UTC)
		assert.False(t, ok)
	})
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []domain.NormalizedMission{
		{ID: "old", CreatedAt: base},
		{ID: "none"},
		{ID: "new", CreatedAt: base.Add(time.Hour)},
	}
	SortNewestFirst(ms)
	assert.Equal(t, "new", ms[0].ID)
	assert.Equal(t, "old", ms[1].ID)
	assert.Equal(t, "none", ms[2].ID)
}

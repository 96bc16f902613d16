package mission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name                  string
		size, current, target string
		wantValue, wantUpside string
	}{
		{"with target", "2", "100", "120", "$200.00", "+$40.00"},
		{"zero upside is measured", "2", "100", "100", "$200.00", "+$0.00"},
		{"negative upside", "1", "100", "96.5", "$100.00", "-$3.50"},
		{"no target", "2", "100", "0", "$200.00", "N/A"},
		{"no size", "0", "100", "120", "N/A", "N/A"},
		{"no price", "2", "0", "120", "N/A", "N/A"},
		{"thousands", "1.5", "45000.123", "50000", "$67,500.18", "+$7,499.82"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(d(tt.size), d(tt.current), d(tt.target))
			assert.Equal(t, tt.wantValue, v.Value)
			assert.Equal(t, tt.wantUpside, v.Upside)
		})
	}
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0.00", FormatUSD(d("0")))
	assert.Equal(t, "$999.99", FormatUSD(d("999.99")))
	assert.Equal(t, "$1,000.00", FormatUSD(d("1000")))
	assert.Equal(t, "$1,234,567.89", FormatUSD(d("1234567.891")))
	assert.Equal(t, "-$18.50", FormatUSD(d("-18.5")))
	assert.Equal(t, "+$18.50", FormatSignedUSD(d("18.5")))
	assert.Equal(t, "-$0.40", FormatSignedUSD(d("-0.4")))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "08:05 AM", FormatAge(time.Date(2026, 5, 2, 8, 5, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, "2026-05-01 11:45 PM", FormatAge(time.Date(2026, 5, 1, 23, 45, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, NotAvailable, FormatAge(time.Time{}, now, time.UTC))

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "08:45 AM", FormatAge(time.Date(2026, 5, 1, 23, 45, 0, 0, time.UTC), now, tokyo))
	assert.Equal(t, "2026-05-02 05:05 PM",
		FormatAge(time.Date(2026, 5, 2, 8, 5, 0, 0, time.UTC), time.Date(2026, 5, 2, 16, 0, 0, 0, time.UTC), tokyo))
}

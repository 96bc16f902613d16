package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single price+size entry in an order book.
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// ProductBook is a point-in-time order book snapshot for one product. Bids are
// ordered best (highest) first, asks best (lowest) first.
type ProductBook struct {
	ProductID string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Time      time.Time
}

// BestBid returns the highest bid, or false when the book has no bids.
func (b ProductBook) BestBid() (decimal.Decimal, bool) {
	if len(b.Bids) == 0 {
		return decimal.Zero, false
	}
	return b.Bids[0].Price, true
}

// BaseAsset splits a product ID such as "ETH-USDC" and returns "ETH".
func BaseAsset(productID string) string {
	base, _, _ := strings.Cut(productID, "-")
	return base
}

// ProductID joins a base and quote currency into an exchange product ID.
func ProductID(base, quote string) string {
	return base + "-" + quote
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// quoteFallbacks is the order in which quote currencies are tried when
// pricing an asset.
var quoteFallbacks = []string{"USD", "USDC"}

// PriceResolver resolves a unit price for an asset from best bids.
type PriceResolver struct {
	exchange domain.Exchange
	logger   *slog.Logger
}

// NewPriceResolver creates a PriceResolver.
func NewPriceResolver(exchange domain.Exchange, logger *slog.Logger) *PriceResolver {
	return &PriceResolver{
		exchange: exchange,
		logger:   logger.With(slog.String("component", "price_resolver")),
	}
}

// Resolve returns the unit price of asset in USD terms. Fiat and stablecoin
// quotes resolve to 1. Otherwise the best bid of <asset>-USD is used, then
// <asset>-USDC. It reports false when no price is available; exchange
// failures are logged, not returned.
func (r *PriceResolver) Resolve(ctx context.Context, asset string) (decimal.Decimal, bool) {
	asset = strings.ToUpper(strings.TrimSpace(asset))
	if asset == "" {
		return decimal.Zero, false
	}
	for _, q := range quoteFallbacks {
		if asset == q {
			return decimal.NewFromInt(1), true
		}
	}

	for _, q := range quoteFallbacks {
		if price, ok := r.bestBid(ctx, domain.ProductID(asset, q)); ok {
			return price, true
		}
	}
	return decimal.Zero, false
}

func (r *PriceResolver) bestBid(ctx context.Context, productID string) (decimal.Decimal, bool) {
	book, err := r.exchange.GetProductBook(ctx, productID, 1)
	if err != nil {
		r.logger.DebugContext(ctx, "best bid unavailable",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return decimal.Zero, false
	}
	price, ok := book.BestBid()
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// passPrices memoizes resolutions for the duration of one pipeline pass so
// several orders on one asset cost a single lookup.
type passPrices struct {
	resolver *PriceResolver
	memo     map[string]decimal.Decimal
}

func newPassPrices(r *PriceResolver) *passPrices {
	return &passPrices{resolver: r, memo: make(map[string]decimal.Decimal)}
}

// current returns the resolved price of asset or zero when unavailable.
func (p *passPrices) current(ctx context.Context, asset string) decimal.Decimal {
	if v, ok := p.memo[asset]; ok {
		return v
	}
	price, ok := p.resolver.Resolve(ctx, asset)
	if !ok {
		price = decimal.Zero
	}
	p.memo[asset] = price
	return price
}

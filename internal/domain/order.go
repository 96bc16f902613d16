package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus is the exchange-reported lifecycle state.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// OrderStyle names one case of the order configuration variant.
type OrderStyle string

const (
	OrderStyleLimit     OrderStyle = "limit"
	OrderStyleBracket   OrderStyle = "bracket"
	OrderStyleStopLimit OrderStyle = "stop-limit"
	OrderStyleMarket    OrderStyle = "market"
	OrderStyleUnknown   OrderStyle = "unknown"
)

// OrderConfig is the tagged configuration variant of an order. Exactly one of
// the concrete types below is stored on an Order; a nil OrderConfig means the
// exchange sent no configuration at all.
//
// Decimal fields are zero when the exchange omitted them.
type OrderConfig interface {
	Style() OrderStyle
}

// LimitConfig is a plain limit order (GTC or GTD).
type LimitConfig struct {
	BaseSize   decimal.Decimal
	LimitPrice decimal.Decimal
	PostOnly   bool
	EndTime    time.Time // zero for GTC
}

func (LimitConfig) Style() OrderStyle { return OrderStyleLimit }

// BracketConfig is a take-profit limit with an attached stop trigger.
type BracketConfig struct {
	BaseSize         decimal.Decimal
	LimitPrice       decimal.Decimal
	StopTriggerPrice decimal.Decimal
	EndTime          time.Time
}

func (BracketConfig) Style() OrderStyle { return OrderStyleBracket }

// StopLimitConfig is a stop-limit order, used either as a protective stop
// (SELL) or as a breakout entry (BUY).
type StopLimitConfig struct {
	BaseSize      decimal.Decimal
	LimitPrice    decimal.Decimal
	StopPrice     decimal.Decimal
	StopDirection string
	EndTime       time.Time
}

func (StopLimitConfig) Style() OrderStyle { return OrderStyleStopLimit }

// MarketConfig is an immediate-or-cancel market order.
type MarketConfig struct {
	BaseSize  decimal.Decimal
	QuoteSize decimal.Decimal
}

func (MarketConfig) Style() OrderStyle { return OrderStyleMarket }

// UnknownConfig is a configuration object whose variant this system does not
// recognise. Kind carries the exchange's variant key for logging.
type UnknownConfig struct {
	Kind string
}

func (UnknownConfig) Style() OrderStyle { return OrderStyleUnknown }

// Order is a read-only view of an exchange order.
type Order struct {
	ID                 string
	ProductID          string
	Side               OrderSide
	Status             OrderStatus
	Config             OrderConfig
	CreatedAt          time.Time
	AverageFilledPrice decimal.Decimal
	FilledSize         decimal.Decimal
	TotalFees          decimal.Decimal
	LastFillAt         time.Time // zero until the first fill
}

// BaseAsset returns the base currency of the order's product, e.g. "BTC" for
// "BTC-USD".
func (o Order) BaseAsset() string {
	return BaseAsset(o.ProductID)
}

// Style returns the configuration variant, or OrderStyleUnknown when the
// order has no configuration.
func (o Order) Style() OrderStyle {
	if o.Config == nil {
		return OrderStyleUnknown
	}
	return o.Config.Style()
}

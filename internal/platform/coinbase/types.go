package coinbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// ErrMalformed marks a response field that is present but does not parse.
var ErrMalformed = errors.New("coinbase: malformed field")

// --------------------------------------------------------------------------
// Advanced Trade API DTOs
// --------------------------------------------------------------------------

type productBookResponse struct {
	PriceBook priceBookDTO `json:"pricebook"`
}

type priceBookDTO struct {
	ProductID string     `json:"product_id"`
	Bids      []levelDTO `json:"bids"`
	Asks      []levelDTO `json:"asks"`
	Time      string     `json:"time"`
}

type levelDTO struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type listOrdersResponse struct {
	Orders  []orderDTO `json:"orders"`
	HasNext bool       `json:"has_next"`
	Cursor  string     `json:"cursor"`
}

type orderDTO struct {
	OrderID            string          `json:"order_id"`
	ProductID          string          `json:"product_id"`
	Side               string          `json:"side"`
	Status             string          `json:"status"`
	OrderConfiguration json.RawMessage `json:"order_configuration"`
	CreatedTime        string          `json:"created_time"`
	AverageFilledPrice string          `json:"average_filled_price"`
	FilledSize         string          `json:"filled_size"`
	TotalFees          string          `json:"total_fees"`
	LastFillTime       string          `json:"last_fill_time"`
}

type marketDTO struct {
	BaseSize  string `json:"base_size"`
	QuoteSize string `json:"quote_size"`
}

type limitDTO struct {
	BaseSize   string `json:"base_size"`
	LimitPrice string `json:"limit_price"`
	PostOnly   bool   `json:"post_only"`
	EndTime    string `json:"end_time"`
}

type stopLimitDTO struct {
	BaseSize      string `json:"base_size"`
	LimitPrice    string `json:"limit_price"`
	StopPrice     string `json:"stop_price"`
	StopDirection string `json:"stop_direction"`
	EndTime       string `json:"end_time"`
}

type bracketDTO struct {
	BaseSize         string `json:"base_size"`
	LimitPrice       string `json:"limit_price"`
	StopTriggerPrice string `json:"stop_trigger_price"`
	EndTime          string `json:"end_time"`
}

type errorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	ErrorDetails string `json:"error_details"`
}

// --------------------------------------------------------------------------
// Conversion to domain types
// --------------------------------------------------------------------------

func (b priceBookDTO) toDomain() (domain.ProductBook, error) {
	var p fieldParser
	book := domain.ProductBook{
		ProductID: b.ProductID,
		Bids:      p.levels("bids", b.Bids),
		Asks:      p.levels("asks", b.Asks),
		Time:      p.time("time", b.Time),
	}
	if p.err != nil {
		return domain.ProductBook{}, p.err
	}
	return book, nil
}

// toDomain converts the wire order. A non-empty field that does not parse
// fails the whole order rather than reading as zero.
func (o orderDTO) toDomain() (domain.Order, error) {
	var p fieldParser
	order := domain.Order{
		ID:                 o.OrderID,
		ProductID:          o.ProductID,
		Side:               domain.OrderSide(strings.ToUpper(o.Side)),
		Status:             domain.OrderStatus(strings.ToUpper(o.Status)),
		Config:             p.config(o.OrderConfiguration),
		CreatedAt:          p.time("created_time", o.CreatedTime),
		AverageFilledPrice: p.decimal("average_filled_price", o.AverageFilledPrice),
		FilledSize:         p.decimal("filled_size", o.FilledSize),
		TotalFees:          p.decimal("total_fees", o.TotalFees),
		LastFillAt:         p.time("last_fill_time", o.LastFillTime),
	}
	if p.err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", o.OrderID, p.err)
	}
	return order, nil
}

// decodeConfig turns the exchange's one-key configuration object into the
// tagged variant. It returns nil when the object is absent or empty, and
// UnknownConfig for variants this system does not model.
func decodeConfig(raw json.RawMessage) (domain.OrderConfig, error) {
	var p fieldParser
	cfg := p.config(raw)
	return cfg, p.err
}

// fieldParser converts wire strings and keeps the first failure. The
// exchange sends "" for fields that do not apply; those read as zero.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(field, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s %q: %v", ErrMalformed, field, value, err)
	}
}

func (p *fieldParser) decimal(field, s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(field, s, err)
		return decimal.Zero
	}
	return d
}

func (p *fieldParser) time(field, s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		p.fail(field, s, err)
		return time.Time{}
	}
	return t
}

func (p *fieldParser) levels(side string, levels []levelDTO) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, domain.PriceLevel{
			Price: p.decimal(side+".price", l.Price),
			Size:  p.decimal(side+".size", l.Size),
		})
	}
	return out
}

func (p *fieldParser) unmarshal(kind string, v json.RawMessage, dst any) bool {
	if err := json.Unmarshal(v, dst); err != nil {
		p.fail("order_configuration."+kind, string(v), err)
		return false
	}
	return true
}

func (p *fieldParser) config(raw json.RawMessage) domain.OrderConfig {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(raw, &variants); err != nil {
		p.fail("order_configuration", string(raw), err)
		return nil
	}
	if len(variants) == 0 {
		return nil
	}

	if kind, v, ok := first(variants, "limit_limit_gtc", "limit_limit_gtd", "limit_limit_fok", "sor_limit_ioc"); ok {
		var c limitDTO
		if !p.unmarshal(kind, v, &c) {
			return nil
		}
		return domain.LimitConfig{
			BaseSize:   p.decimal(kind+".base_size", c.BaseSize),
			LimitPrice: p.decimal(kind+".limit_price", c.LimitPrice),
			PostOnly:   c.PostOnly,
			EndTime:    p.time(kind+".end_time", c.EndTime),
		}
	}
	if kind, v, ok := first(variants, "trigger_bracket_gtc", "trigger_bracket_gtd"); ok {
		var c bracketDTO
		if !p.unmarshal(kind, v, &c) {
			return nil
		}
		return domain.BracketConfig{
			BaseSize:         p.decimal(kind+".base_size", c.BaseSize),
			LimitPrice:       p.decimal(kind+".limit_price", c.LimitPrice),
			StopTriggerPrice: p.decimal(kind+".stop_trigger_price", c.StopTriggerPrice),
			EndTime:          p.time(kind+".end_time", c.EndTime),
		}
	}
	if kind, v, ok := first(variants, "stop_limit_stop_limit_gtc", "stop_limit_stop_limit_gtd"); ok {
		var c stopLimitDTO
		if !p.unmarshal(kind, v, &c) {
			return nil
		}
		return domain.StopLimitConfig{
			BaseSize:      p.decimal(kind+".base_size", c.BaseSize),
			LimitPrice:    p.decimal(kind+".limit_price", c.LimitPrice),
			StopPrice:     p.decimal(kind+".stop_price", c.StopPrice),
			StopDirection: c.StopDirection,
			EndTime:       p.time(kind+".end_time", c.EndTime),
		}
	}
	if kind, v, ok := first(variants, "market_market_ioc", "market_market_fok"); ok {
		var c marketDTO
		if !p.unmarshal(kind, v, &c) {
			return nil
		}
		return domain.MarketConfig{
			BaseSize:  p.decimal(kind+".base_size", c.BaseSize),
			QuoteSize: p.decimal(kind+".quote_size", c.QuoteSize),
		}
	}

	kinds := make([]string, 0, len(variants))
	for k := range variants {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return domain.UnknownConfig{Kind: strings.Join(kinds, ",")}
}

func first(m map[string]json.RawMessage, keys ...string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && string(v) != "null" {
			return k, v, true
		}
	}
	return "", nil, false
}

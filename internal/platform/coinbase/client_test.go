package coinbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/moonlander/internal/crypto"
	"github.com/alanyoungcy/moonlander/internal/domain"
)

func TestGetProductBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/brokerage/product_book", r.URL.Path)
		assert.Equal(t, "BTC-USD", r.URL.Query().Get("product_id"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("CB-ACCESS-SIGN"))
		w.Write([]byte(`{"pricebook":{"product_id":"BTC-USD",
			"bids":[{"price":"64999.5","size":"0.25"},{"price":"64999","size":"1"}],
			"asks":[{"price":"65000.01","size":"0.5"}],
			"time":"2026-03-01T10:00:00.123456Z"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &crypto.HMACAuth{Key: "k", Secret: "s"}, 0)
	book, err := c.GetProductBook(context.Background(), "BTC-USD", 50)
	require.NoError(t, err)

	assert.Equal(t, "BTC-USD", book.ProductID)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	best, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, "64999.5", best.String())
	assert.Equal(t, 2026, book.Time.Year())
}

func TestListOrdersFollowsCursor(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "OPEN", r.URL.Query().Get("order_status"))
		switch r.URL.Query().Get("cursor") {
		case "":
			w.Write([]byte(`{"orders":[{"order_id":"a","product_id":"BTC-USD","side":"SELL","status":"OPEN",
				"order_configuration":{"trigger_bracket_gtc":{"base_size":"0.1","limit_price":"70000","stop_trigger_price":"60000"}},
				"created_time":"2026-03-01T10:00:00Z"}],"has_next":true,"cursor":"p2"}`))
		case "p2":
			w.Write([]byte(`{"orders":[{"order_id":"b","product_id":"ETH-USD","side":"BUY","status":"OPEN",
				"order_configuration":{"stop_limit_stop_limit_gtd":{"base_size":"1","limit_price":"3600","stop_price":"3500","stop_direction":"STOP_DIRECTION_STOP_UP","end_time":"2026-04-01T00:00:00Z"}}}],
				"has_next":false,"cursor":""}`))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, 0)
	orders, err := c.ListOrders(context.Background(), domain.OrderStatusOpen)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 2, calls)

	bracket, ok := orders[0].Config.(domain.BracketConfig)
	require.True(t, ok)
	assert.Equal(t, "70000", bracket.LimitPrice.String())
	assert.Equal(t, "60000", bracket.StopTriggerPrice.String())
	assert.Equal(t, domain.OrderSideSell, orders[0].Side)

	stop, ok := orders[1].Config.(domain.StopLimitConfig)
	require.True(t, ok)
	assert.Equal(t, "3500", stop.StopPrice.String())
	assert.False(t, stop.EndTime.IsZero())
}

func TestListFilledOrdersRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		resp := listOrdersResponse{HasNext: true, Cursor: "next-" + r.URL.Query().Get("cursor")}
		for i := 0; i < n; i++ {
			resp.Orders = append(resp.Orders, orderDTO{
				OrderID:            strconv.Itoa(i),
				Side:               "SELL",
				Status:             "FILLED",
				AverageFilledPrice: "10",
				FilledSize:         "1",
				TotalFees:          "",
				LastFillTime:       time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC).Format(time.RFC3339),
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, 0)
	orders, err := c.ListFilledOrders(context.Background(), 25)
	require.NoError(t, err)
	assert.Len(t, orders, 25)
	assert.True(t, orders[0].TotalFees.IsZero())
	assert.Nil(t, orders[0].Config)
}

func TestCheckHTTPStatusMapsSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"E","message":"nope"}`))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil, 0).GetProductBook(context.Background(), "X-USD", 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}

	assert.NoError(t, checkHTTPStatus(http.StatusOK, nil))
	assert.ErrorContains(t, checkHTTPStatus(http.StatusBadGateway, nil), "HTTP 502")
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.OrderStyle
	}{
		{"limit gtc", `{"limit_limit_gtc":{"base_size":"1","limit_price":"2","post_only":true}}`, domain.OrderStyleLimit},
		{"limit gtd", `{"limit_limit_gtd":{"base_size":"1","limit_price":"2","end_time":"2026-01-01T00:00:00Z"}}`, domain.OrderStyleLimit},
		{"bracket gtd", `{"trigger_bracket_gtd":{"limit_price":"2","stop_trigger_price":"1"}}`, domain.OrderStyleBracket},
		{"stop limit", `{"stop_limit_stop_limit_gtc":{"stop_price":"1"}}`, domain.OrderStyleStopLimit},
		{"market", `{"market_market_ioc":{"quote_size":"100"}}`, domain.OrderStyleMarket},
		{"unrecognized", `{"twap_limit_gtd":{"limit_price":"2"}}`, domain.OrderStyleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := decodeConfig(json.RawMessage(tt.raw))
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, tt.want, cfg.Style())
		})
	}

	for _, raw := range []string{"", "null", "{}"} {
		cfg, err := decodeConfig(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, cfg, "raw %q", raw)
	}

	cfg, err := decodeConfig(json.RawMessage(`{"twap_limit_gtd":{}}`))
	require.NoError(t, err)
	unknown, ok := cfg.(domain.UnknownConfig)
	require.True(t, ok)
	assert.Equal(t, "twap_limit_gtd", unknown.Kind)

	cfg, err = decodeConfig(json.RawMessage(`{"limit_limit_gtc":{"base_size":"","limit_price":"12.5"}}`))
	require.NoError(t, err)
	limit := cfg.(domain.LimitConfig)
	assert.True(t, limit.BaseSize.IsZero())
	assert.Equal(t, "12.5", limit.LimitPrice.String())
}

func TestDecodeConfigRejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `["limit_limit_gtc"]`},
		{"variant not an object", `{"trigger_bracket_gtc":"70000"}`},
		{"bad limit price", `{"limit_limit_gtc":{"limit_price":"12,5"}}`},
		{"bad stop trigger", `{"trigger_bracket_gtc":{"limit_price":"2","stop_trigger_price":"n/a"}}`},
		{"bad end time", `{"stop_limit_stop_limit_gtd":{"stop_price":"1","end_time":"tomorrow"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := decodeConfig(json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, cfg)
		})
	}
}

func TestListFilledOrdersFailsOnMalformedFill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[
			{"order_id":"s1","product_id":"BTC-USD","side":"SELL","status":"FILLED",
			 "order_configuration":{"trigger_bracket_gtc":{"base_size":"1","limit_price":"70000","stop_trigger_price":"60000"}},
			 "average_filled_price":"61,500.00","filled_size":"1","total_fees":"3","last_fill_time":"2026-03-02T10:00:00Z"},
			{"order_id":"b1","product_id":"BTC-USD","side":"BUY","status":"FILLED",
			 "order_configuration":{"limit_limit_gtc":{"base_size":"1","limit_price":"58000"}},
			 "average_filled_price":"58000","filled_size":"1","total_fees":"3","last_fill_time":"2026-03-01T10:00:00Z"}
		],"has_next":false}`))
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL, nil, 0).ListFilledOrders(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "average_filled_price")
	assert.Nil(t, orders)
}

func TestListOrdersSkipsMalformedOpenOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[
			{"order_id":"bad","product_id":"BTC-USD","side":"SELL","status":"OPEN",
			 "order_configuration":{"trigger_bracket_gtc":{"base_size":"0.1","limit_price":"7O000","stop_trigger_price":"60000"}}},
			{"order_id":"good","product_id":"BTC-USD","side":"SELL","status":"OPEN",
			 "order_configuration":{"trigger_bracket_gtc":{"base_size":"0.1","limit_price":"70000","stop_trigger_price":"60000"}}}
		],"has_next":false}`))
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL, nil, 0).ListOrders(context.Background(), domain.OrderStatusOpen)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "good", orders[0].ID)
}

func TestGetProductBookRejectsMalformedLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pricebook":{"product_id":"BTC-USD","bids":[{"price":"abc","size":"1"}],"asks":[]}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).GetProductBook(context.Background(), "BTC-USD", 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

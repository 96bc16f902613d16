// Package coinbase is a read-only REST client for the Coinbase Advanced
// Trade API.
package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/moonlander/internal/crypto"
	"github.com/alanyoungcy/moonlander/internal/domain"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.coinbase.com"

	brokeragePath = "/api/v3/brokerage"
	pageSize      = 250
	// maxPages bounds cursor pagination of a single listing.
	maxPages = 40
)

// Client implements domain.Exchange against the Advanced Trade API.
type Client struct {
	baseURL    string
	auth       crypto.Authorizer
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ domain.Exchange = (*Client)(nil)

// NewClient creates a new Coinbase REST client.
//
// baseURL is the API root, e.g. "https://api.coinbase.com". auth may be nil
// for unauthenticated use against a test server. requestsPerSecond paces
// outgoing requests; zero or less disables pacing.
func NewClient(baseURL string, auth crypto.Authorizer, requestsPerSecond float64) *Client {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}
	return &Client{
		baseURL: baseURL,
		auth:    auth,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     slog.Default().With(slog.String("component", "coinbase")),
	}
}

// WithLogger sets the logger used to report skipped orders.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger.With(slog.String("component", "coinbase"))
	return c
}

// GetProductBook returns up to limit levels per side for productID.
func (c *Client) GetProductBook(ctx context.Context, productID string, limit int) (domain.ProductBook, error) {
	params := url.Values{}
	params.Set("product_id", productID)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp productBookResponse
	if err := c.get(ctx, "/product_book", params, &resp); err != nil {
		return domain.ProductBook{}, fmt.Errorf("coinbase: get product book %s: %w", productID, err)
	}

	book, err := resp.PriceBook.toDomain()
	if err != nil {
		return domain.ProductBook{}, fmt.Errorf("coinbase: get product book %s: %w", productID, err)
	}
	if book.ProductID == "" {
		book.ProductID = productID
	}
	return book, nil
}

// ListOrders returns every order with the given status, following the
// cursor until the exchange reports no further pages. Orders with malformed
// fields are logged and left out.
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	orders, err := c.listOrders(ctx, status, -1, true)
	if err != nil {
		return nil, fmt.Errorf("coinbase: list %s orders: %w", status, err)
	}
	return orders, nil
}

// ListFilledOrders returns at most limit filled orders, newest first. A
// malformed fill fails the whole listing so no P&L is derived from it.
func (c *Client) ListFilledOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	orders, err := c.listOrders(ctx, domain.OrderStatusFilled, limit, false)
	if err != nil {
		return nil, fmt.Errorf("coinbase: list filled orders: %w", err)
	}
	return orders, nil
}

// listOrders pages through /orders/historical/batch. A negative limit means
// no limit. skipMalformed drops orders that fail to convert instead of
// failing the listing.
func (c *Client) listOrders(ctx context.Context, status domain.OrderStatus, limit int, skipMalformed bool) ([]domain.Order, error) {
	var (
		out    []domain.Order
		cursor string
	)
	for page := 0; page < maxPages; page++ {
		size := pageSize
		if limit >= 0 {
			size = min(pageSize, limit-len(out))
			if size <= 0 {
				break
			}
		}

		params := url.Values{}
		params.Set("order_status", string(status))
		params.Set("limit", strconv.Itoa(size))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp listOrdersResponse
		if err := c.get(ctx, "/orders/historical/batch", params, &resp); err != nil {
			return nil, err
		}
		for _, dto := range resp.Orders {
			o, err := dto.toDomain()
			if err != nil {
				if !skipMalformed {
					return nil, err
				}
				c.logger.WarnContext(ctx, "skipping malformed order",
					slog.String("order_id", dto.OrderID),
					slog.String("product_id", dto.ProductID),
					slog.String("error", err.Error()),
				)
				continue
			}
			out = append(out, o)
		}

		if !resp.HasNext || resp.Cursor == "" || resp.Cursor == cursor {
			break
		}
		cursor = resp.Cursor
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// get builds, authorizes, sends and decodes a GET request.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + brokeragePath + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.auth != nil {
		if err := c.auth.Authorize(req, nil); err != nil {
			return fmt.Errorf("authorize request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkHTTPStatus maps non-2xx HTTP status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Error
	}

	var sentinel error
	switch statusCode {
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		sentinel = domain.ErrRateLimited
	default:
		sentinel = errors.New("HTTP " + strconv.Itoa(statusCode))
	}
	if msg == "" {
		return fmt.Errorf("coinbase: %w", sentinel)
	}
	return fmt.Errorf("coinbase: %w: %s", sentinel, msg)
}

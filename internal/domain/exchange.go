package domain

import "context"

// Exchange is the read-only view of the exchange used by the pipeline.
type Exchange interface {
	// GetProductBook returns up to limit levels per side for productID.
	GetProductBook(ctx context.Context, productID string, limit int) (ProductBook, error)
	// ListOrders returns every order with the given status.
	ListOrders(ctx context.Context, status OrderStatus) ([]Order, error)
	// ListFilledOrders returns at most limit filled orders, newest first.
	ListFilledOrders(ctx context.Context, limit int) ([]Order, error)
}

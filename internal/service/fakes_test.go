package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

var errExchangeDown = errors.New("exchange down")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeExchange struct {
	mu        sync.Mutex
	books     map[string]domain.ProductBook
	bookErr   map[string]error
	open      []domain.Order
	openErr   error
	filled    []domain.Order
	filledErr error

	bookCalls   map[string]int
	filledLimit int
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		books:     make(map[string]domain.ProductBook),
		bookErr:   make(map[string]error),
		bookCalls: make(map[string]int),
	}
}

func (f *fakeExchange) withBid(productID, price string) *fakeExchange {
	book := f.books[productID]
	book.ProductID = productID
	book.Bids = append([]domain.PriceLevel{{Price: d(price), Size: d("1")}}, book.Bids...)
	f.books[productID] = book
	return f
}

func (f *fakeExchange) GetProductBook(_ context.Context, productID string, limit int) (domain.ProductBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls[productID]++
	if err := f.bookErr[productID]; err != nil {
		return domain.ProductBook{}, err
	}
	book, ok := f.books[productID]
	if !ok {
		return domain.ProductBook{}, domain.ErrNotFound
	}
	if limit > 0 && len(book.Bids) > limit {
		book.Bids = book.Bids[:limit]
	}
	if limit > 0 && len(book.Asks) > limit {
		book.Asks = book.Asks[:limit]
	}
	return book, nil
}

func (f *fakeExchange) ListOrders(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return f.open, f.openErr
}

func (f *fakeExchange) ListFilledOrders(_ context.Context, limit int) ([]domain.Order, error) {
	f.mu.Lock()
	f.filledLimit = limit
	f.mu.Unlock()
	return f.filled, f.filledErr
}

type sentNotice struct {
	event, title, message string
}

type fakeNotifier struct {
	sent []sentNotice
}

func (n *fakeNotifier) Notify(_ context.Context, event, title, message string) error {
	n.sent = append(n.sent, sentNotice{event, title, message})
	return nil
}

type fakeLandingStore struct {
	rows map[string]domain.HistoricalMission
}

func (s *fakeLandingStore) Upsert(_ context.Context, l domain.HistoricalMission) (bool, error) {
	if s.rows == nil {
		s.rows = make(map[string]domain.HistoricalMission)
	}
	_, exists := s.rows[l.ID]
	s.rows[l.ID] = l
	return !exists, nil
}

func (s *fakeLandingStore) GetByID(_ context.Context, id string) (domain.HistoricalMission, error) {
	l, ok := s.rows[id]
	if !ok {
		return domain.HistoricalMission{}, domain.ErrNotFound
	}
	return l, nil
}

func (s *fakeLandingStore) ListRecent(_ context.Context, _ domain.ListOpts) ([]domain.HistoricalMission, error) {
	out := make([]domain.HistoricalMission, 0, len(s.rows))
	for _, l := range s.rows {
		out = append(out, l)
	}
	return out, nil
}

// failingLandingStore fails Upsert for failID until healed.
type failingLandingStore struct {
	fakeLandingStore
	failID string
}

func (s *failingLandingStore) Upsert(ctx context.Context, l domain.HistoricalMission) (bool, error) {
	if l.ID == s.failID {
		return false, errExchangeDown
	}
	return s.fakeLandingStore.Upsert(ctx, l)
}

// stalledExchange blocks every call until the caller's context ends.
type stalledExchange struct{}

func (stalledExchange) GetProductBook(ctx context.Context, _ string, _ int) (domain.ProductBook, error) {
	<-ctx.Done()
	return domain.ProductBook{}, ctx.Err()
}

func (stalledExchange) ListOrders(ctx context.Context, _ domain.OrderStatus) ([]domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledExchange) ListFilledOrders(ctx context.Context, _ int) ([]domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

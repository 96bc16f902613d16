package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
}

// LandingStore persists completed sell missions beyond the live history
// window.
type LandingStore interface {
	// Upsert stores the landing and reports whether it was new.
	Upsert(ctx context.Context, landing HistoricalMission) (bool, error)
	GetByID(ctx context.Context, id string) (HistoricalMission, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]HistoricalMission, error)
}

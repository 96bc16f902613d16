package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/server/middleware"
)

// LandingReader is the read side of the landing store. It is declared
// locally so the handler works with either the Postgres store or the
// stream-backed log.
type LandingReader interface {
	GetByID(ctx context.Context, id string) (domain.HistoricalMission, error)
	ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.HistoricalMission, error)
}

// LandingHandler serves persisted landings beyond the snapshot's history
// window.
type LandingHandler struct {
	landings LandingReader
	logger   *slog.Logger
}

// NewLandingHandler creates a LandingHandler. A nil reader makes every
// endpoint answer 503.
func NewLandingHandler(landings LandingReader, logger *slog.Logger) *LandingHandler {
	return &LandingHandler{
		landings: landings,
		logger:   logHandler(logger, "landing"),
	}
}

type listLandingsResponse struct {
	Landings []domain.HistoricalMission `json:"landings"`
	Limit    int                        `json:"limit"`
	Offset   int                        `json:"offset"`
}

// ListLandings returns landings newest first with pagination.
// GET /api/landings?limit=50&offset=0&since=2025-01-01T00:00:00Z
func (h *LandingHandler) ListLandings(w http.ResponseWriter, r *http.Request) {
	if h.landings == nil {
		writeError(w, http.StatusServiceUnavailable, "landing store not configured")
		return
	}
	opts := parseListOpts(r)

	landings, err := h.landings.ListRecent(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list landings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list landings")
		return
	}

	middleware.Annotate(r, slog.Int("landings", len(landings)))
	writeJSON(w, http.StatusOK, listLandingsResponse{
		Landings: nonNil(landings),
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
}

// GetLanding returns one landing by its sell order ID.
// GET /api/landings/{id}
func (h *LandingHandler) GetLanding(w http.ResponseWriter, r *http.Request) {
	if h.landings == nil {
		writeError(w, http.StatusServiceUnavailable, "landing store not configured")
		return
	}
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing landing id")
		return
	}
	middleware.Annotate(r, slog.String("landing_id", id))

	landing, err := h.landings.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "landing not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get landing failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get landing")
		return
	}
	writeJSON(w, http.StatusOK, landing)
}

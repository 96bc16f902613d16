package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/moonlander/internal/domain"
	"github.com/alanyoungcy/moonlander/internal/server/middleware"
)

// MissionHandler serves the latest snapshot's missions and history.
type MissionHandler struct {
	snapshots domain.SnapshotCache
	logger    *slog.Logger
}

// NewMissionHandler creates a MissionHandler reading from snapshots.
func NewMissionHandler(snapshots domain.SnapshotCache, logger *slog.Logger) *MissionHandler {
	return &MissionHandler{
		snapshots: snapshots,
		logger:    logHandler(logger, "mission"),
	}
}

type missionsResponse struct {
	SnapshotID  string                     `json:"snapshot_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Notice      string                     `json:"notice,omitempty"`
	Missions    []domain.NormalizedMission `json:"missions"`
}

type historyResponse struct {
	SnapshotID  string                     `json:"snapshot_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Notice      string                     `json:"notice,omitempty"`
	History     []domain.HistoricalMission `json:"history"`
}

// latest loads the snapshot or writes the error response and returns false.
func (h *MissionHandler) latest(w http.ResponseWriter, r *http.Request) (domain.Snapshot, bool) {
	snap, err := h.snapshots.LatestSnapshot(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return snap, false
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: load snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return snap, false
	}
	middleware.Annotate(r, slog.String("snapshot_id", snap.ID))
	return snap, true
}

// ListMissions returns every open mission, newest first.
// GET /api/missions
func (h *MissionHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, missionsResponse{
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
		Notice:      snap.Notice,
		Missions:    nonNil(snap.Missions),
	})
}

// ListProductMissions returns the missions of one product. The product ID
// match is case-insensitive; an unknown product yields an empty list.
// GET /api/missions/{product}
func (h *MissionHandler) ListProductMissions(w http.ResponseWriter, r *http.Request) {
	product := strings.ToUpper(strings.TrimSpace(pathParam(r, "product")))
	if product == "" {
		writeError(w, http.StatusBadRequest, "missing product id")
		return
	}
	middleware.Annotate(r, slog.String("product", product))
	snap, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, missionsResponse{
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
		Notice:      snap.Notice,
		Missions:    nonNil(snap.MissionsFor(product)),
	})
}

// ListHistory returns the most recent completed missions.
// GET /api/history
func (h *MissionHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
		Notice:      snap.Notice,
		History:     nonNil(snap.History),
	})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

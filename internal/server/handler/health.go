package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// Pinger is implemented by backing services that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	snapshots domain.SnapshotCache
	checks    map[string]Pinger
	mode      string
	startedAt time.Time
	stale     time.Duration
	logger    *slog.Logger
}

// NewHealthHandler creates a HealthHandler. A snapshot older than stale
// marks the service degraded; checks are pinged on every request.
func NewHealthHandler(snapshots domain.SnapshotCache, checks map[string]Pinger, mode string, stale time.Duration, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		snapshots: snapshots,
		checks:    checks,
		mode:      mode,
		startedAt: time.Now(),
		stale:     stale,
		logger:    logHandler(logger, "health"),
	}
}

// HealthCheck reports liveness, the age of the latest snapshot and the
// reachability of each configured backend. It answers 200 when every check
// passes and 503 otherwise.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	now := time.Now()
	status := "ok"
	components := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed",
				slog.String("component", name),
				slog.String("error", err.Error()),
			)
			components[name] = "down"
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	body := map[string]any{
		"mode":           h.mode,
		"uptime_seconds": int64(now.Sub(h.startedAt).Seconds()),
		"timestamp":      now.UTC().Format(time.RFC3339),
		"components":     components,
	}

	if h.snapshots != nil {
		snap, err := h.snapshots.LatestSnapshot(ctx)
		switch {
		case err != nil:
			body["snapshot"] = nil
		default:
			age := now.Sub(snap.GeneratedAt)
			body["snapshot"] = map[string]any{
				"id":           snap.ID,
				"generated_at": snap.GeneratedAt.UTC().Format(time.RFC3339),
				"age_seconds":  int64(age.Seconds()),
				"notice":       snap.Notice,
			}
			if h.stale > 0 && age > h.stale {
				status = "degraded"
			}
		}
	}
	body["status"] = status

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

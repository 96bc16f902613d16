package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/moonlander/internal/server"
	"github.com/alanyoungcy/moonlander/internal/server/handler"
	"github.com/alanyoungcy/moonlander/internal/server/ws"
	"github.com/alanyoungcy/moonlander/internal/service"
)

// staleAfterPasses is how many poll intervals may pass without a new
// snapshot before health reports degraded.
const staleAfterPasses = 3

// MonitorMode runs the poller and, when enabled, the HTTP and WebSocket
// server until ctx is cancelled.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	loc, err := a.cfg.Missions.Location()
	if err != nil {
		return fmt.Errorf("monitor mode: %w", err)
	}
	poller := newPoller(a.cfg, deps, loc, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	return g.Wait()
}

// OnceMode runs a single pass and prints the snapshot as indented JSON.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	loc, err := a.cfg.Missions.Location()
	if err != nil {
		return fmt.Errorf("once mode: %w", err)
	}
	poller := newPoller(a.cfg, deps, loc, a.logger)

	snap, err := poller.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("once mode: %w", err)
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("once mode: encode snapshot: %w", err)
	}
	if _, err := fmt.Fprintln(a.out, string(payload)); err != nil {
		return fmt.Errorf("once mode: write snapshot: %w", err)
	}

	a.logger.InfoContext(ctx, "pass complete",
		slog.String("snapshot_id", snap.ID),
		slog.Int("missions", len(snap.Missions)),
		slog.Int("history", len(snap.History)),
	)
	return nil
}

// startHTTPServer registers the WebSocket hub and the API server on g. The
// server shuts down when ctx is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, deps.Snapshots, ws.Config{
		Channels:        []string{service.ChannelMissions, service.ChannelLandings},
		SnapshotChannel: service.ChannelMissions,
		AllowedOrigins:  a.cfg.Server.CORSOrigins,
		StartedAt:       time.Now().UTC(),
	}, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:               a.cfg.Server.Port,
		CORSOrigins:        a.cfg.Server.CORSOrigins,
		APIKey:             a.cfg.Server.APIKey,
		RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
	}, server.Handlers{
		Health:   handler.NewHealthHandler(deps.Snapshots, deps.HealthChecks, a.cfg.Mode, staleAfterPasses*a.cfg.PollInterval(), a.logger),
		Missions: handler.NewMissionHandler(deps.Snapshots, a.logger),
		Landings: handler.NewLandingHandler(deps.LandingReader, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
		)
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

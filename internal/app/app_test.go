package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/moonlander/internal/cache/memory"
	"github.com/alanyoungcy/moonlander/internal/config"
	"github.com/alanyoungcy/moonlander/internal/domain"
)

type emptyExchange struct{}

func (emptyExchange) GetProductBook(_ context.Context, productID string, _ int) (domain.ProductBook, error) {
	return domain.ProductBook{ProductID: productID}, nil
}

func (emptyExchange) ListOrders(context.Context, domain.OrderStatus) ([]domain.Order, error) {
	return nil, nil
}

func (emptyExchange) ListFilledOrders(context.Context, int) ([]domain.Order, error) {
	return nil, nil
}

func testConfig(mode string) *config.Config {
	cfg := config.Defaults()
	cfg.Mode = mode
	cfg.Coinbase.APIKey = "key"
	cfg.Coinbase.APISecret = "secret"
	cfg.Missions.Timezone = "UTC"
	return &cfg
}

func testApp(cfg *config.Config, out io.Writer) *App {
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.out = out
	return a
}

func TestWireWithoutBackendsUsesMemory(t *testing.T) {
	cfg := testConfig("once")
	deps, cleanup, err := Wire(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, deps.Exchange)
	assert.IsType(t, &memory.SnapshotCache{}, deps.Snapshots)
	assert.IsType(t, &memory.Bus{}, deps.SignalBus)
	assert.IsType(t, &memory.RateLimiter{}, deps.RateLimiter)
	assert.Nil(t, deps.LandingStore)
	assert.Nil(t, deps.LandingReader)
	assert.Nil(t, deps.Archiver)
	assert.Empty(t, deps.HealthChecks)
	assert.False(t, deps.Notifier.Enabled())
}

func TestWireRejectsMissingCredentials(t *testing.T) {
	cfg := testConfig("once")
	cfg.Coinbase.APISecret = ""
	_, _, err := Wire(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestOnceModePrintsSnapshot(t *testing.T) {
	cfg := testConfig("once")
	var out bytes.Buffer
	a := testApp(cfg, &out)

	deps, cleanup, err := Wire(context.Background(), cfg, a.logger)
	require.NoError(t, err)
	defer cleanup()
	deps.Exchange = emptyExchange{}

	require.NoError(t, a.OnceMode(context.Background(), deps))

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.NotEmpty(t, snap.ID)
	assert.Empty(t, snap.Missions)
	assert.Contains(t, out.String(), "\n  \"id\"", "output is indented")

	cached, err := deps.Snapshots.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.ID, cached.ID)
}

func TestMonitorModeStopsOnCancel(t *testing.T) {
	cfg := testConfig("monitor")
	cfg.Server.Enabled = false
	a := testApp(cfg, io.Discard)

	deps, cleanup, err := Wire(context.Background(), cfg, a.logger)
	require.NoError(t, err)
	defer cleanup()
	deps.Exchange = emptyExchange{}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = a.MonitorMode(ctx, deps)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	_, err = deps.Snapshots.LatestSnapshot(context.Background())
	assert.NoError(t, err, "the first pass runs immediately")
}

func TestRunRejectsUnknownMode(t *testing.T) {
	a := testApp(testConfig("trade"), io.Discard)
	defer a.Close()
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mode")
}

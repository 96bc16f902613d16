package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// Pipeline runs one complete derivation pass.
type Pipeline struct {
	missions *MissionService
	history  *HistoryService
	now      func() time.Time
}

// NewPipeline combines the mission and history services.
func NewPipeline(missions *MissionService, history *HistoryService) *Pipeline {
	return &Pipeline{missions: missions, history: history, now: time.Now}
}

// Run executes one pass and returns the snapshot and the next trend state.
// It never fails: upstream errors surface as a notice on the snapshot.
func (p *Pipeline) Run(ctx context.Context, prev domain.TrendState) (domain.Snapshot, domain.TrendState) {
	mp := p.missions.Pass(ctx, prev)
	hist, histNotice := p.history.Recent(ctx)

	notice := mp.Notice
	if notice == "" {
		notice = histNotice
	}

	return domain.Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: p.now().UTC(),
		Missions:    mp.Missions,
		History:     hist,
		Notice:      notice,
	}, mp.Trend
}

package depth

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

const (
	bandGap    = 3.0
	bandMinLen = 6.0
	edgeMin    = 2.0
	edgeMax    = 98.0
	yMin       = 10.0
	yMax       = 90.0
	jitter     = 1.5
)

// Place assigns coordinates to the bucketed entries of one mission. marker is
// the mission's visual position; resistance lands in a band left of it and
// support right of it. Coordinates are derived from each entry's price so an
// unchanged level keeps its position across passes.
func Place(b Buckets, marker float64, cfg Config) domain.DepthLayout {
	p := placer{cfg: cfg}

	leftHi := math.Max(marker-bandGap, edgeMin+bandMinLen)
	rightLo := math.Min(marker+bandGap, edgeMax-bandMinLen)

	layout := domain.DepthLayout{
		Resistance: make([]domain.PlacedPoint, 0, len(b.Resistance)),
		Support:    make([]domain.PlacedPoint, 0, len(b.Support)),
	}
	for _, e := range b.Resistance {
		layout.Resistance = append(layout.Resistance, p.place(e, domain.DepthSideResistance, edgeMin, leftHi))
	}
	for _, e := range b.Support {
		layout.Support = append(layout.Support, p.place(e, domain.DepthSideSupport, rightLo, edgeMax))
	}
	return layout
}

// Layout buckets book around m and places the result.
func Layout(book domain.ProductBook, m domain.NormalizedMission, cfg Config) domain.DepthLayout {
	return Place(Bucket(book, WindowOf(m), cfg), float64(m.VisualPosition), cfg)
}

type placer struct {
	cfg    Config
	placed []domain.PlacedPoint
}

func (p *placer) place(e domain.DepthEntry, side domain.DepthSide, xLo, xHi float64) domain.PlacedPoint {
	rng := rand.New(rand.NewPCG(seed(e.Price.String())))

	candidate := func() (float64, float64) {
		return xLo + rng.Float64()*(xHi-xLo), yMin + rng.Float64()*(yMax-yMin)
	}

	firstX, firstY := candidate()
	x, y := firstX, firstY
	attempts := max(1, p.cfg.MaxPlacementAttempts)
	found := false
	for i := 0; i < attempts; i++ {
		if i > 0 {
			x, y = candidate()
		}
		if p.clear(x, y) {
			found = true
			break
		}
	}
	if !found {
		x = clampF(firstX+(rng.Float64()*2-1)*jitter, xLo, xHi)
		y = clampF(firstY+(rng.Float64()*2-1)*jitter, yMin, yMax)
	}

	pt := domain.PlacedPoint{DepthEntry: e, Side: side, X: x, Y: y}
	p.placed = append(p.placed, pt)
	return pt
}

func (p *placer) clear(x, y float64) bool {
	for _, q := range p.placed {
		if math.Hypot(x-q.X, y-q.Y) < p.cfg.MinSeparation {
			return false
		}
	}
	return true
}

func seed(price string) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte(price))
	s := h.Sum64()
	return s, s ^ 0x9e3779b97f4a7c15
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

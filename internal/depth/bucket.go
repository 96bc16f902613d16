package depth

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

var (
	majorRatio    = decimal.RequireFromString("0.6")
	moderateRatio = decimal.RequireFromString("0.15")
)

// Buckets are the depth entries kept for one mission.
type Buckets struct {
	Resistance []domain.DepthEntry
	Support    []domain.DepthEntry
}

// Len returns the number of entries on both sides.
func (b Buckets) Len() int {
	return len(b.Resistance) + len(b.Support)
}

// Bucket filters the book to the levels relevant to w, splits the display
// slots between asks and bids by total book volume, keeps the largest
// well-spaced levels of each side and tiers them by size.
func Bucket(book domain.ProductBook, w Window, cfg Config) Buckets {
	if !w.Current.IsPositive() {
		return Buckets{}
	}

	askCandidates := candidates(book.Asks, w, cfg, func(p decimal.Decimal) bool {
		if !p.GreaterThan(w.Current) {
			return false
		}
		return !w.Target.IsPositive() || !p.GreaterThan(w.Target.Mul(cfg.AskCeilingRatio))
	})
	bidCandidates := candidates(book.Bids, w, cfg, func(p decimal.Decimal) bool {
		if !p.LessThan(w.Current) {
			return false
		}
		return !w.Floor.IsPositive() || !p.LessThan(w.Floor.Mul(cfg.BidFloorRatio))
	})

	askSlots, bidSlots := AllocateSlots(volume(book.Asks), volume(book.Bids), cfg.TotalSlots, cfg.MinSlotsPerSide)

	out := Buckets{
		Resistance: spaced(askCandidates, askSlots, cfg.MinSpacingPct),
		Support:    spaced(bidCandidates, bidSlots, cfg.MinSpacingPct),
	}
	assignTiers(out.Resistance, out.Support)
	return out
}

// AllocateSlots splits total display slots between asks and bids in
// proportion to their volume. Each side gets at least minPerSide (never more
// than half the total); when the minimum pushes the sum over total, the
// larger side gives up the difference.
func AllocateSlots(askVolume, bidVolume decimal.Decimal, total, minPerSide int) (askSlots, bidSlots int) {
	if total <= 0 {
		return 0, 0
	}
	minPerSide = max(0, min(minPerSide, total/2))

	sum := askVolume.Add(bidVolume)
	if !sum.IsPositive() {
		askSlots = total / 2
	} else {
		share := askVolume.Div(sum).Mul(decimal.NewFromInt(int64(total))).Round(0)
		askSlots = int(share.IntPart())
	}
	bidSlots = total - askSlots

	askSlots = max(askSlots, minPerSide)
	bidSlots = max(bidSlots, minPerSide)
	if over := askSlots + bidSlots - total; over > 0 {
		if askSlots >= bidSlots {
			askSlots -= over
		} else {
			bidSlots -= over
		}
	}
	return askSlots, bidSlots
}

func candidates(levels []domain.PriceLevel, w Window, cfg Config, keep func(decimal.Decimal) bool) []domain.DepthEntry {
	out := make([]domain.DepthEntry, 0, len(levels))
	for _, lvl := range levels {
		if !lvl.Size.IsPositive() || !keep(lvl.Price) {
			continue
		}
		pos, ok := w.Position(lvl.Price)
		if !ok || math.IsNaN(pos) || pos < -cfg.PositionMargin || pos > 100+cfg.PositionMargin {
			continue
		}
		out = append(out, domain.DepthEntry{
			Price:    lvl.Price,
			Size:     lvl.Size,
			Notional: lvl.Price.Mul(lvl.Size),
			Position: pos,
		})
	}
	return out
}

// spaced keeps up to slots entries, largest first, skipping any entry closer
// than minSpacing percentage points to one already kept.
func spaced(entries []domain.DepthEntry, slots int, minSpacing float64) []domain.DepthEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b domain.DepthEntry) int {
		if c := b.Size.Cmp(a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	kept := make([]domain.DepthEntry, 0, slots)
	for _, e := range sorted {
		if len(kept) >= slots {
			break
		}
		ok := true
		for _, k := range kept {
			if math.Abs(e.Position-k.Position) < minSpacing {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, e)
		}
	}
	return kept
}

func assignTiers(sides ...[]domain.DepthEntry) {
	largest := decimal.Zero
	for _, side := range sides {
		for _, e := range side {
			largest = decimal.Max(largest, e.Size)
		}
	}
	for _, side := range sides {
		for i := range side {
			side[i].Tier = tier(side[i].Size, largest)
		}
	}
}

func tier(size, largest decimal.Decimal) int {
	if !largest.IsPositive() {
		return 1
	}
	ratio := size.Div(largest)
	switch {
	case ratio.GreaterThan(majorRatio):
		return 3
	case ratio.GreaterThan(moderateRatio):
		return 2
	default:
		return 1
	}
}

func volume(levels []domain.PriceLevel) decimal.Decimal {
	sum := decimal.Zero
	for _, lvl := range levels {
		sum = sum.Add(lvl.Size)
	}
	return sum
}

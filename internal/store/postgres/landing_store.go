package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/moonlander/internal/domain"
)

// errNoPool is returned by every LandingStore method when constructed
// without a pool.
var errNoPool = errors.New("postgres: pool not configured")

// LandingStore implements domain.LandingStore using PostgreSQL.
type LandingStore struct {
	pool *pgxpool.Pool
}

// NewLandingStore creates a new LandingStore backed by the given connection pool.
func NewLandingStore(pool *pgxpool.Pool) *LandingStore {
	return &LandingStore{pool: pool}
}

// Upsert inserts the landing or refreshes an existing row with the same sell
// order ID. It reports true when the row did not exist before.
func (s *LandingStore) Upsert(ctx context.Context, l domain.HistoricalMission) (bool, error) {
	if s.pool == nil {
		return false, errNoPool
	}

	const query = `
		INSERT INTO landings (
			id, product_id, proceeds, price, size, fees, profit,
			outcome, matched_buy_id, filled_at,
			proceeds_display, price_display, size_display, fees_display,
			profit_display, time_display
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14,
			$15, $16
		)
		ON CONFLICT (id) DO UPDATE SET
			proceeds = EXCLUDED.proceeds,
			price = EXCLUDED.price,
			size = EXCLUDED.size,
			fees = EXCLUDED.fees,
			profit = EXCLUDED.profit,
			outcome = EXCLUDED.outcome,
			matched_buy_id = EXCLUDED.matched_buy_id,
			filled_at = EXCLUDED.filled_at,
			proceeds_display = EXCLUDED.proceeds_display,
			price_display = EXCLUDED.price_display,
			size_display = EXCLUDED.size_display,
			fees_display = EXCLUDED.fees_display,
			profit_display = EXCLUDED.profit_display,
			time_display = EXCLUDED.time_display,
			updated_at = NOW()
		RETURNING (xmax = 0)`

	var inserted bool
	err := s.pool.QueryRow(ctx, query,
		l.ID, l.ProductID,
		numericFromDecimal(l.Proceeds), numericFromDecimal(l.Price),
		numericFromDecimal(l.Size), numericFromDecimal(l.Fees),
		numericFromOptional(l.Profit),
		string(l.Outcome), l.MatchedBuyID, l.FilledAt,
		l.ProceedsDisplay, l.PriceDisplay, l.SizeDisplay, l.FeesDisplay,
		l.ProfitDisplay, l.TimeDisplay,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("postgres: upsert landing %s: %w", l.ID, err)
	}
	return inserted, nil
}

// landingSelectCols lists the columns read back into a HistoricalMission.
const landingSelectCols = `id, product_id, proceeds, price, size, fees, profit,
	outcome, matched_buy_id, filled_at,
	proceeds_display, price_display, size_display, fees_display,
	profit_display, time_display`

func scanLandingFromRow(
	scanner interface{ Scan(dest ...any) error },
) (domain.HistoricalMission, error) {
	var l domain.HistoricalMission
	var proceeds, price, size, fees, profit pgtype.Numeric
	var outcome string

	err := scanner.Scan(
		&l.ID, &l.ProductID,
		&proceeds, &price, &size, &fees, &profit,
		&outcome, &l.MatchedBuyID, &l.FilledAt,
		&l.ProceedsDisplay, &l.PriceDisplay, &l.SizeDisplay, &l.FeesDisplay,
		&l.ProfitDisplay, &l.TimeDisplay,
	)
	if err != nil {
		return domain.HistoricalMission{}, err
	}
	l.Outcome = domain.Outcome(outcome)

	if l.Proceeds, err = decimalFromNumeric(proceeds); err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("proceeds: %w", err)
	}
	if l.Price, err = decimalFromNumeric(price); err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("price: %w", err)
	}
	if l.Size, err = decimalFromNumeric(size); err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("size: %w", err)
	}
	if l.Fees, err = decimalFromNumeric(fees); err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("fees: %w", err)
	}
	if l.Profit, err = optionalDecimalFromNumeric(profit); err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("profit: %w", err)
	}
	return l, nil
}

// GetByID returns domain.ErrNotFound when no landing has the given sell
// order ID.
func (s *LandingStore) GetByID(ctx context.Context, id string) (domain.HistoricalMission, error) {
	if s.pool == nil {
		return domain.HistoricalMission{}, errNoPool
	}
	query := `SELECT ` + landingSelectCols + ` FROM landings WHERE id = $1`
	l, err := scanLandingFromRow(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.HistoricalMission{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.HistoricalMission{}, fmt.Errorf("postgres: get landing %s: %w", id, err)
	}
	return l, nil
}

// ListRecent returns landings newest first, honouring opts.Since, Limit and
// Offset.
func (s *LandingStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.HistoricalMission, error) {
	if s.pool == nil {
		return nil, errNoPool
	}

	query := `SELECT ` + landingSelectCols + ` FROM landings`
	var args []any
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += fmt.Sprintf(" WHERE filled_at >= $%d", len(args))
	}
	query += " ORDER BY filled_at DESC, id"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list landings: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoricalMission
	for rows.Next() {
		l, err := scanLandingFromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan landing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list landings: %w", err)
	}
	return out, nil
}

// Compile-time interface check.
var _ domain.LandingStore = (*LandingStore)(nil)

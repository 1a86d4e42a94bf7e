package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

var _ repository.LocationPlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

const planColumns = `id, user_id, location, active, order_id, purchased_at, expires_at, remaining_claims, created_at`

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.LocationPlan) error {
	// The unique index on (user_id, location) is what makes "one plan row
	// per location" hold even if two settlements race past the find.
	const q = `
INSERT INTO location_plans (` + planColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (user_id, location) DO UPDATE SET
  active=EXCLUDED.active, order_id=EXCLUDED.order_id,
  purchased_at=EXCLUDED.purchased_at, expires_at=EXCLUDED.expires_at,
  remaining_claims=EXCLUDED.remaining_claims;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.Location, p.Active, p.OrderID, p.PurchasedAt, p.ExpiresAt, p.RemainingClaims, p.CreatedAt,
	)
	return err
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.LocationPlan, error) {
	return r.scanOne(ctx, tx, `SELECT `+planColumns+` FROM location_plans WHERE id=$1;`, id)
}

func (r *PostgresPlanRepo) FindByUserAndLocation(ctx context.Context, tx repository.Tx, userID, location string) (*model.LocationPlan, error) {
	q := `SELECT ` + planColumns + ` FROM location_plans WHERE user_id=$1 AND location=$2`
	if inTx(tx) {
		q += ` FOR UPDATE`
	}
	return r.scanOne(ctx, tx, q+`;`, userID, location)
}

func (r *PostgresPlanRepo) scanOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.LocationPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var p model.LocationPlan
	if err := row.Scan(&p.ID, &p.UserID, &p.Location, &p.Active, &p.OrderID, &p.PurchasedAt, &p.ExpiresAt, &p.RemainingClaims, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *PostgresPlanRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.LocationPlan, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+planColumns+` FROM location_plans WHERE user_id=$1 ORDER BY created_at;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.LocationPlan
	for rows.Next() {
		var p model.LocationPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Location, &p.Active, &p.OrderID, &p.PurchasedAt, &p.ExpiresAt, &p.RemainingClaims, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DecrementRemaining is the guarded balance decrement. The WHERE clause is
// the whole concurrency story: two racing issuances both reach this UPDATE,
// the row lock serializes them, and the loser's guard fails.
func (r *PostgresPlanRepo) DecrementRemaining(ctx context.Context, tx repository.Tx, planID string) (int, error) {
	const q = `
UPDATE location_plans
   SET remaining_claims = remaining_claims - 1
 WHERE id=$1 AND active AND expires_at > now() AND remaining_claims > 0
RETURNING remaining_claims;
`
	row, err := pickRow(ctx, r.pool, tx, q, planID)
	if err != nil {
		return 0, err
	}
	var remaining int
	if err := row.Scan(&remaining); err == nil {
		return remaining, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrReadDatabaseRow
	}

	// The guard failed; read the row back to name the reason. An expired
	// plan with a zero balance reports expiry, not exhaustion.
	plan, err := r.FindByID(ctx, tx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNoActivePlan
		}
		return 0, err
	}
	if !plan.Active || !plan.ExpiresAt.After(time.Now()) {
		return 0, domain.ErrNoActivePlan
	}
	return 0, domain.ErrBalanceExhausted
}

func (r *PostgresPlanRepo) DeactivateExpired(ctx context.Context, tx repository.Tx) (int, error) {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE location_plans SET active=FALSE WHERE active AND expires_at <= now();`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresPlanRepo) CountActiveByLocation(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	const q = `
SELECT location, COUNT(*)
  FROM location_plans
 WHERE active AND expires_at > now()
 GROUP BY location;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var loc string
		var n int
		if err := rows.Scan(&loc, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[loc] = n
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

var _ repository.ClaimRepository = (*PostgresClaimRepo)(nil)

type PostgresClaimRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresClaimRepo(pool *pgxpool.Pool) *PostgresClaimRepo {
	return &PostgresClaimRepo{pool: pool}
}

const claimColumns = `id, plan_id, user_id, cafe_id, code, issued_at, redeemed, redeemed_at`

// uniqueViolation is the Postgres error class for duplicate keys.
const uniqueViolation = "23505"

func (r *PostgresClaimRepo) Save(ctx context.Context, tx repository.Tx, c *model.Claim) error {
	const q = `
INSERT INTO claims (` + claimColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.PlanID, c.UserID, c.CafeID, c.Code, c.IssuedAt, c.Redeemed, c.RedeemedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *PostgresClaimRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM claims WHERE code=$1`
	if inTx(tx) {
		q += ` FOR UPDATE`
	}
	c, err := r.scanOne(ctx, tx, q+`;`, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	return c, err
}

func (r *PostgresClaimRepo) FindOutstanding(ctx context.Context, tx repository.Tx, planID, cafeID string) (*model.Claim, error) {
	const q = `
SELECT ` + claimColumns + `
  FROM claims
 WHERE plan_id=$1 AND cafe_id=$2 AND NOT redeemed;
`
	return r.scanOne(ctx, tx, q, planID, cafeID)
}

func (r *PostgresClaimRepo) scanOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Claim, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var c model.Claim
	if err := row.Scan(&c.ID, &c.PlanID, &c.UserID, &c.CafeID, &c.Code, &c.IssuedAt, &c.Redeemed, &c.RedeemedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *PostgresClaimRepo) CodeExists(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM claims WHERE code=$1);`, code)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

// MarkRedeemed flips the redeemed flag exactly once. The NOT redeemed guard
// in the WHERE clause makes the second racer lose even if both read the
// claim as unredeemed.
func (r *PostgresClaimRepo) MarkRedeemed(ctx context.Context, tx repository.Tx, claimID string) error {
	const q = `UPDATE claims SET redeemed=TRUE, redeemed_at=now() WHERE id=$1 AND NOT redeemed;`
	tag, err := execSQL(ctx, r.pool, tx, q, claimID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.scanOne(ctx, tx, `SELECT `+claimColumns+` FROM claims WHERE id=$1;`, claimID); err != nil {
		return err
	}
	return domain.ErrAlreadyRedeemed
}

func (r *PostgresClaimRepo) ListByPlan(ctx context.Context, tx repository.Tx, planID string) ([]*model.Claim, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+claimColumns+` FROM claims WHERE plan_id=$1 ORDER BY issued_at;`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Claim
	for rows.Next() {
		var c model.Claim
		if err := rows.Scan(&c.ID, &c.PlanID, &c.UserID, &c.CafeID, &c.Code, &c.IssuedAt, &c.Redeemed, &c.RedeemedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ListByCafe is the owner-facing redemption log. It is a read-time join
// against the claims table, so a plan reset that purges claims empties the
// log with no second write.
func (r *PostgresClaimRepo) ListByCafe(ctx context.Context, tx repository.Tx, cafeID string) ([]*model.RedemptionLogEntry, error) {
	const q = `
SELECT c.user_id, u.name, u.email, c.code, c.issued_at, c.redeemed
  FROM claims c
  JOIN users u ON u.id = c.user_id
 WHERE c.cafe_id=$1
 ORDER BY c.issued_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.RedemptionLogEntry
	for rows.Next() {
		var e model.RedemptionLogEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.UserEmail, &e.Code, &e.IssuedAt, &e.Redeemed); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *PostgresClaimRepo) DeleteByPlan(ctx context.Context, tx repository.Tx, planID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM claims WHERE plan_id=$1;`, planID)
	return err
}

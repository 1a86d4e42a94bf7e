package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

var _ repository.ReferralCodeRepository = (*PostgresReferralCodeRepo)(nil)

type PostgresReferralCodeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresReferralCodeRepo(pool *pgxpool.Pool) *PostgresReferralCodeRepo {
	return &PostgresReferralCodeRepo{pool: pool}
}

const referralColumns = `id, code, discount_amount, max_usage, usage_count, active, created_at`

func (r *PostgresReferralCodeRepo) Save(ctx context.Context, tx repository.Tx, rc *model.ReferralCode) error {
	const q = `
INSERT INTO referral_codes (` + referralColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  discount_amount=$3, max_usage=$4, usage_count=$5, active=$6;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rc.ID, rc.Code, rc.DiscountAmount, rc.MaxUsage, rc.UsageCount, rc.Active, rc.CreatedAt,
	)
	return err
}

func (r *PostgresReferralCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ReferralCode, error) {
	const q = `SELECT ` + referralColumns + ` FROM referral_codes WHERE code=upper($1);`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var rc model.ReferralCode
	if err := row.Scan(&rc.ID, &rc.Code, &rc.DiscountAmount, &rc.MaxUsage, &rc.UsageCount, &rc.Active, &rc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &rc, nil
}

// IncrementUsage bumps the counter only while it is below the cap, so the
// cap holds under concurrent settlements without an explicit lock.
func (r *PostgresReferralCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE referral_codes SET usage_count = usage_count + 1 WHERE id=$1 AND usage_count < max_usage;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM referral_codes WHERE id=$1);`, id)
	if err != nil {
		return err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return domain.ErrReadDatabaseRow
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrCodeExhausted
}

func (r *PostgresReferralCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ReferralCode, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+referralColumns+` FROM referral_codes ORDER BY created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ReferralCode
	for rows.Next() {
		var rc model.ReferralCode
		if err := rows.Scan(&rc.ID, &rc.Code, &rc.DiscountAmount, &rc.MaxUsage, &rc.UsageCount, &rc.Active, &rc.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rc)
	}
	return out, rows.Err()
}

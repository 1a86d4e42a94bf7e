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

var _ repository.CafeRepository = (*PostgresCafeRepo)(nil)

type PostgresCafeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCafeRepo(pool *pgxpool.Pool) *PostgresCafeRepo {
	return &PostgresCafeRepo{pool: pool}
}

const cafeColumns = `id, name, address, location, created_by, owner_id, created_at, updated_at`

func (r *PostgresCafeRepo) Save(ctx context.Context, tx repository.Tx, c *model.Cafe) error {
	const q = `
INSERT INTO cafes (` + cafeColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, address=$3, location=$4, owner_id=$6, updated_at=$8;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Name, c.Address, c.Location, c.CreatedBy, c.OwnerID, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresCafeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Cafe, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+cafeColumns+` FROM cafes WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	var c model.Cafe
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Location, &c.CreatedBy, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *PostgresCafeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Cafe, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+cafeColumns+` FROM cafes ORDER BY location, name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Cafe
	for rows.Next() {
		var c model.Cafe
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Location, &c.CreatedBy, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresCafeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM cafes WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"

	"cafe-passport/internal/domain/model"
)

type CafeRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Cafe) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Cafe, error)
	List(ctx context.Context, tx Tx) ([]*model.Cafe, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

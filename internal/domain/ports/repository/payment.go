package repository

import (
	"context"

	"cafe-passport/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}

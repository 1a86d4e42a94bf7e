package repository

import (
	"context"

	"cafe-passport/internal/domain/model"
)

type ReferralCodeRepository interface {
	Save(ctx context.Context, tx Tx, rc *model.ReferralCode) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.ReferralCode, error)
	// IncrementUsage bumps usage_count while it is below max_usage; returns
	// domain.ErrCodeExhausted once the cap is reached.
	IncrementUsage(ctx context.Context, tx Tx, id string) error
	List(ctx context.Context, tx Tx) ([]*model.ReferralCode, error)
}

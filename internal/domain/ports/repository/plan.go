package repository

import (
	"context"

	"cafe-passport/internal/domain/model"
)

type LocationPlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.LocationPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.LocationPlan, error)
	// FindByUserAndLocation returns the plan row for (user, location) or
	// domain.ErrNotFound. When tx is a transaction the row is locked.
	FindByUserAndLocation(ctx context.Context, tx Tx, userID, location string) (*model.LocationPlan, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.LocationPlan, error)
	// DecrementRemaining performs the conditional balance decrement:
	// it only succeeds while the plan is active, unexpired and has claims
	// left, and returns the new balance. Returns domain.ErrBalanceExhausted
	// when the guard fails on balance, domain.ErrNoActivePlan when it fails
	// on the validity window.
	DecrementRemaining(ctx context.Context, tx Tx, planID string) (int, error)
	// DeactivateExpired flips active=false on overdue rows and reports how
	// many were touched. Correctness never depends on it; IsUsable is
	// evaluated fresh on every read.
	DeactivateExpired(ctx context.Context, tx Tx) (int, error)
	CountActiveByLocation(ctx context.Context, tx Tx) (map[string]int, error)
}

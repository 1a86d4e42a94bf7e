package usecase

import (
	"context"

	"cafe-passport/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase aggregates counters for the admin panel.
type StatsUseCase interface {
	Totals(ctx context.Context) (users int, activePlansByLocation map[string]int, err error)
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	users    repository.UserRepository
	plans    repository.LocationPlanRepository
	payments repository.PaymentRepository
}

func NewStatsUseCase(users repository.UserRepository, plans repository.LocationPlanRepository, payments repository.PaymentRepository) *statsUC {
	return &statsUC{users: users, plans: plans, payments: payments}
}

func (u *statsUC) Totals(ctx context.Context) (int, map[string]int, error) {
	users, err := u.users.CountUsers(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	byLocation, err := u.plans.CountActiveByLocation(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	return users, byLocation, nil
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.payments.SumByPeriod(ctx, nil, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.payments.SumByPeriod(ctx, nil, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.payments.SumByPeriod(ctx, nil, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}

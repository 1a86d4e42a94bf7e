package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/domain/ports/repository"
)

var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase is the ledger of location plans. Settle is invoked only
// after the gateway adapter has verified the provider signature.
type EntitlementUseCase interface {
	Settle(ctx context.Context, n adapter.SettlementNotice) (*model.LocationPlan, error)
	PlansForUser(ctx context.Context, userID string) ([]*model.LocationPlan, error)
}

type entitlementUC struct {
	users     repository.UserRepository
	plans     repository.LocationPlanRepository
	claims    repository.ClaimRepository
	payments  repository.PaymentRepository
	referrals repository.ReferralCodeRepository
	tm        repository.TransactionManager
	provider  string
	log       *zerolog.Logger
}

func NewEntitlementUseCase(
	users repository.UserRepository,
	plans repository.LocationPlanRepository,
	claims repository.ClaimRepository,
	payments repository.PaymentRepository,
	referrals repository.ReferralCodeRepository,
	tm repository.TransactionManager,
	provider string,
	logger *zerolog.Logger,
) *entitlementUC {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{
		users:     users,
		plans:     plans,
		claims:    claims,
		payments:  payments,
		referrals: referrals,
		tm:        tm,
		provider:  provider,
		log:       &l,
	}
}

// Settle finds or creates the plan for (user, location) and resets it to a
// fresh one-month window with the full claim allowance. Prior-cycle claims
// are purged in the same transaction, so they are neither redeemable nor
// visible in the cafe-side log afterwards.
func (u *entitlementUC) Settle(ctx context.Context, n adapter.SettlementNotice) (*model.LocationPlan, error) {
	if n.UserID == "" || n.Location == "" {
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	var plan *model.LocationPlan
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// The user row is read and written inside the same transaction so two
		// settlements for one user cannot clobber each other's coupon stage.
		user, err := u.users.FindByID(ctx, tx, n.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		existing, err := u.plans.FindByUserAndLocation(ctx, tx, n.UserID, n.Location)
		switch {
		case err == nil:
			// Renewal: purge the old cycle's claims, then reset in place.
			if err := u.claims.DeleteByPlan(ctx, tx, existing.ID); err != nil {
				return err
			}
			existing.Reset(n.OrderID, now)
			plan = existing
		case errors.Is(err, domain.ErrNotFound):
			plan, err = model.NewLocationPlan(uuid.NewString(), n.UserID, n.Location, n.OrderID, now)
			if err != nil {
				return err
			}
		default:
			return err
		}
		if err := u.plans.Save(ctx, tx, plan); err != nil {
			return err
		}

		u.applyMarketing(ctx, tx, user, n)
		if err := u.users.Save(ctx, tx, user); err != nil {
			return err
		}

		return u.payments.Save(ctx, tx, model.NewPayment(
			n.UserID, n.Location, u.provider, n.OrderID, n.PaymentID, n.Amount, now,
		))
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().
		Str("user_id", n.UserID).
		Str("location", n.Location).
		Str("order_id", n.OrderID).
		Msg("plan settled")
	return plan, nil
}

// applyMarketing carries over the referral/coupon bookkeeping from the
// payment flow. Failures here never fail a settlement that has already been
// paid for; they are logged and dropped.
func (u *entitlementUC) applyMarketing(ctx context.Context, tx repository.Tx, user *model.User, n adapter.SettlementNotice) {
	if n.Referral != "" {
		user.ReferralName = n.Referral
		rc, err := u.referrals.FindByCode(ctx, tx, n.Referral)
		if err == nil {
			if err := u.referrals.IncrementUsage(ctx, tx, rc.ID); err != nil && !errors.Is(err, domain.ErrCodeExhausted) {
				u.log.Warn().Err(err).Str("code", rc.Code).Msg("referral usage bump failed")
			}
		}
	}

	switch {
	case n.Coupon == "FIRST100" && user.CouponStage == model.CouponStageNone:
		user.CouponStage = model.CouponStageFirstUsed
	case n.Coupon == "SECOND100" && user.CouponStage == model.CouponStageFirstUsed:
		user.CouponStage = model.CouponStageExhausted
	case n.Coupon == "":
		if user.CouponStage == model.CouponStageNone {
			user.CouponStage = model.CouponStageFirstUsed
		} else if user.CouponStage == model.CouponStageFirstUsed {
			user.CouponStage = model.CouponStageExhausted
		}
	}
}

func (u *entitlementUC) PlansForUser(ctx context.Context, userID string) ([]*model.LocationPlan, error) {
	return u.plans.ListByUser(ctx, nil, userID)
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
)

var _ ReferralUseCase = (*referralUC)(nil)

type ReferralUseCase interface {
	Create(ctx context.Context, code string, discountAmount int64, maxUsage int) (*model.ReferralCode, error)
	// Verify returns the discount for a live code; ErrCodeExhausted once the
	// usage cap is hit, ErrNotFound for unknown or inactive codes.
	Verify(ctx context.Context, code string) (int64, error)
	List(ctx context.Context) ([]*model.ReferralCode, error)
}

type referralUC struct {
	referrals repository.ReferralCodeRepository
}

func NewReferralUseCase(referrals repository.ReferralCodeRepository) *referralUC {
	return &referralUC{referrals: referrals}
}

func (u *referralUC) Create(ctx context.Context, code string, discountAmount int64, maxUsage int) (*model.ReferralCode, error) {
	if _, err := u.referrals.FindByCode(ctx, nil, code); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	rc, err := model.NewReferralCode(uuid.NewString(), code, discountAmount, maxUsage)
	if err != nil {
		return nil, err
	}
	if err := u.referrals.Save(ctx, nil, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (u *referralUC) Verify(ctx context.Context, code string) (int64, error) {
	rc, err := u.referrals.FindByCode(ctx, nil, strings.ToUpper(code))
	if err != nil {
		return 0, err
	}
	// Inactive codes read as unknown; live-but-drained codes get the
	// distinct exhausted kind.
	if !rc.Active {
		return 0, domain.ErrNotFound
	}
	if !rc.Usable() {
		return 0, domain.ErrCodeExhausted
	}
	return rc.DiscountAmount, nil
}

func (u *referralUC) List(ctx context.Context) ([]*model.ReferralCode, error) {
	return u.referrals.List(ctx, nil)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/repository"
	"cafe-passport/internal/infra/logging"
)

// codeMintAttempts bounds claim-code regeneration on collision. With 12
// random bytes a second collision in a row is not a realistic outcome; the
// bound exists so a broken store cannot spin the request forever.
const codeMintAttempts = 5

var _ ClaimUseCase = (*claimUC)(nil)

// ClaimUseCase issues single-use claim codes against a usable plan.
type ClaimUseCase interface {
	// Issue mints a claim for (user, cafe) and returns the code plus the
	// remaining balance. Error kinds: ErrCafeNotFound, ErrNoActivePlan,
	// ErrDuplicateClaim, ErrBalanceExhausted.
	Issue(ctx context.Context, userID, cafeID string) (string, int, error)
}

type claimUC struct {
	cafes  repository.CafeRepository
	plans  repository.LocationPlanRepository
	claims repository.ClaimRepository
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewClaimUseCase(
	cafes repository.CafeRepository,
	plans repository.LocationPlanRepository,
	claims repository.ClaimRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *claimUC {
	l := logger.With().Str("component", "ClaimUC").Logger()
	return &claimUC{cafes: cafes, plans: plans, claims: claims, tm: tm, log: &l}
}

func (u *claimUC) Issue(ctx context.Context, userID, cafeID string) (string, int, error) {
	defer logging.TraceDuration(u.log, "ClaimUC.Issue")()

	if userID == "" || cafeID == "" {
		return "", 0, domain.ErrInvalidArgument
	}

	cafe, err := u.cafes.FindByID(ctx, nil, cafeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", 0, domain.ErrCafeNotFound
		}
		return "", 0, err
	}

	var (
		code      string
		remaining int
	)
	// The decrement and the claim insert commit as one unit. The plan row is
	// locked inside the transaction, so two concurrent issuances for the same
	// entitlement serialize and cannot over-draw the balance.
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		plan, err := u.plans.FindByUserAndLocation(ctx, tx, userID, cafe.Location)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoActivePlan
			}
			return err
		}

		// Window checks come before the balance check: an expired plan with
		// claims left still reads as having no active plan.
		now := time.Now()
		if !plan.Active || !plan.ExpiresAt.After(now) {
			return domain.ErrNoActivePlan
		}

		// One outstanding QR per cafe at a time.
		if _, err := u.claims.FindOutstanding(ctx, tx, plan.ID, cafeID); err == nil {
			return domain.ErrDuplicateClaim
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		remaining, err = u.plans.DecrementRemaining(ctx, tx, plan.ID)
		if err != nil {
			return err
		}

		code, err = u.mintCode(ctx, tx)
		if err != nil {
			return err
		}
		claim, err := model.NewClaim(plan, cafeID, code, now)
		if err != nil {
			return err
		}
		return u.claims.Save(ctx, tx, claim)
	})
	if err != nil {
		return "", 0, err
	}

	u.log.Info().
		Str("user_id", userID).
		Str("cafe_id", cafeID).
		Int("remaining", remaining).
		Msg("claim issued")
	return code, remaining, nil
}

// mintCode generates a code and verifies global uniqueness before commit,
// regenerating on collision rather than failing the request.
func (u *claimUC) mintCode(ctx context.Context, tx repository.Tx) (string, error) {
	for i := 0; i < codeMintAttempts; i++ {
		code, err := model.NewClaimCode()
		if err != nil {
			return "", err
		}
		exists, err := u.claims.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("claim code generation: %w", domain.ErrOperationFailed)
}

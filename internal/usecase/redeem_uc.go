package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/domain/ports/repository"
	"cafe-passport/internal/infra/logging"
)

var _ RedeemUseCase = (*redeemUC)(nil)

// Redemption is what the cafe owner sees after a successful scan.
type Redemption struct {
	CafeID   string
	CafeName string
	UserID   string
	User     model.PublicInfo
	IssuedAt time.Time
}

// RedeemUseCase consumes claim codes. A claim moves unredeemed -> redeemed
// exactly once; every later attempt on the same code is ErrAlreadyRedeemed
// with no state change.
type RedeemUseCase interface {
	Redeem(ctx context.Context, code, actorID string) (*Redemption, error)
}

type redeemUC struct {
	users  repository.UserRepository
	cafes  repository.CafeRepository
	claims repository.ClaimRepository
	tm     repository.TransactionManager
	events adapter.EventPublisher
	log    *zerolog.Logger
}

func NewRedeemUseCase(
	users repository.UserRepository,
	cafes repository.CafeRepository,
	claims repository.ClaimRepository,
	tm repository.TransactionManager,
	events adapter.EventPublisher,
	logger *zerolog.Logger,
) *redeemUC {
	l := logger.With().Str("component", "RedeemUC").Logger()
	return &redeemUC{users: users, cafes: cafes, claims: claims, tm: tm, events: events, log: &l}
}

func (u *redeemUC) Redeem(ctx context.Context, code, actorID string) (*Redemption, error) {
	defer logging.TraceDuration(u.log, "RedeemUC.Redeem")()

	if code == "" || actorID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var res *Redemption
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		claim, err := u.claims.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if claim.Redeemed {
			return domain.ErrAlreadyRedeemed
		}

		cafe, err := u.cafes.FindByID(ctx, tx, claim.CafeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Cafe deleted since issuance.
				return domain.ErrCafeNotFound
			}
			return err
		}
		if cafe.OwnerID != actorID {
			return domain.ErrUnauthorized
		}

		user, err := u.users.FindByID(ctx, tx, claim.UserID)
		if err != nil {
			return err
		}

		if err := u.claims.MarkRedeemed(ctx, tx, claim.ID); err != nil {
			return err
		}

		res = &Redemption{
			CafeID:   cafe.ID,
			CafeName: cafe.Name,
			UserID:   user.ID,
			User:     user.Public(),
			IssuedAt: claim.IssuedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: the broadcast must not block or fail the redemption
	// that already committed.
	if err := u.events.Publish(context.WithoutCancel(ctx), adapter.EventClaimRedeemed, adapter.ClaimRedeemedEvent{
		UserID: res.UserID,
		CafeID: res.CafeID,
	}); err != nil {
		u.log.Warn().Err(err).Str("cafe_id", res.CafeID).Msg("claim-redeemed broadcast failed")
	}

	u.log.Info().
		Str("user_id", res.UserID).
		Str("cafe_id", res.CafeID).
		Msg("claim redeemed")
	return res, nil
}

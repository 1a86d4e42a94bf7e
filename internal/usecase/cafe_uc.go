package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/model"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/domain/ports/repository"
	"cafe-passport/internal/infra/logging"
)

var _ CafeUseCase = (*cafeUC)(nil)

// CafeUseCase covers partner-cafe administration and the owner-facing
// redemption log. Mutations broadcast cafe.updated so clients re-fetch the
// list; issuance does not pass through here and emits nothing.
type CafeUseCase interface {
	Create(ctx context.Context, name, address, location, createdBy, ownerID string) (*model.Cafe, error)
	Update(ctx context.Context, id, name, address, location string) (*model.Cafe, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Cafe, error)
	List(ctx context.Context) ([]*model.Cafe, error)
	// RedemptionLog returns the derived cafe-side claim view. Only the
	// assigned owner or an admin may read it.
	RedemptionLog(ctx context.Context, cafeID, actorID string, actorRole model.Role) ([]*model.RedemptionLogEntry, error)
}

type cafeUC struct {
	cafes  repository.CafeRepository
	claims repository.ClaimRepository
	events adapter.EventPublisher
	log    *zerolog.Logger
}

func NewCafeUseCase(cafes repository.CafeRepository, claims repository.ClaimRepository, events adapter.EventPublisher, logger *zerolog.Logger) *cafeUC {
	l := logger.With().Str("component", "CafeUC").Logger()
	return &cafeUC{cafes: cafes, claims: claims, events: events, log: &l}
}

func (u *cafeUC) Create(ctx context.Context, name, address, location, createdBy, ownerID string) (*model.Cafe, error) {
	cafe, err := model.NewCafe(uuid.NewString(), name, address, location, createdBy, ownerID)
	if err != nil {
		return nil, err
	}
	if err := u.cafes.Save(ctx, nil, cafe); err != nil {
		return nil, err
	}
	u.broadcastUpdated(ctx)
	return cafe, nil
}

func (u *cafeUC) Update(ctx context.Context, id, name, address, location string) (*model.Cafe, error) {
	cafe, err := u.cafes.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCafeNotFound
		}
		return nil, err
	}
	if name != "" {
		cafe.Name = name
	}
	if address != "" {
		cafe.Address = address
	}
	if location != "" {
		cafe.Location = location
	}
	if err := u.cafes.Save(ctx, nil, cafe); err != nil {
		return nil, err
	}
	u.broadcastUpdated(ctx)
	return cafe, nil
}

func (u *cafeUC) Delete(ctx context.Context, id string) error {
	if err := u.cafes.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCafeNotFound
		}
		return err
	}
	u.broadcastUpdated(ctx)
	return nil
}

func (u *cafeUC) Get(ctx context.Context, id string) (*model.Cafe, error) {
	cafe, err := u.cafes.FindByID(ctx, nil, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCafeNotFound
	}
	return cafe, err
}

func (u *cafeUC) List(ctx context.Context) ([]*model.Cafe, error) {
	return u.cafes.List(ctx, nil)
}

func (u *cafeUC) RedemptionLog(ctx context.Context, cafeID, actorID string, actorRole model.Role) ([]*model.RedemptionLogEntry, error) {
	cafe, err := u.cafes.FindByID(ctx, nil, cafeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCafeNotFound
		}
		return nil, err
	}
	if actorRole != model.RoleAdmin && cafe.OwnerID != actorID {
		logging.With(ctx, u.log).Warn().
			Str("actor_id", actorID).
			Msg("redemption log access denied")
		return nil, domain.ErrUnauthorized
	}
	return u.claims.ListByCafe(ctx, nil, cafeID)
}

func (u *cafeUC) broadcastUpdated(ctx context.Context) {
	if err := u.events.Publish(context.WithoutCancel(ctx), adapter.EventCafeUpdated, nil); err != nil {
		u.log.Warn().Err(err).Msg("cafe-updated broadcast failed")
	}
}

package repository

import (
	"context"

	"cafe-passport/internal/domain/model"
)

type ClaimRepository interface {
	// Save inserts a claim. A code collision surfaces as
	// domain.ErrAlreadyExists so the issuer can regenerate and retry.
	Save(ctx context.Context, tx Tx, c *model.Claim) error
	// FindByCode returns the claim for a code or domain.ErrCodeNotFound.
	// When tx is a transaction the row is locked for update.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Claim, error)
	// FindOutstanding returns an unredeemed claim of the user at the cafe
	// within the given plan cycle, or domain.ErrNotFound.
	FindOutstanding(ctx context.Context, tx Tx, planID, cafeID string) (*model.Claim, error)
	// CodeExists checks global code uniqueness before commit; the unique
	// index on code remains the backstop.
	CodeExists(ctx context.Context, tx Tx, code string) (bool, error)
	// MarkRedeemed flips the redeemed flag exactly once. Returns
	// domain.ErrAlreadyRedeemed if the flag was already set.
	MarkRedeemed(ctx context.Context, tx Tx, claimID string) error
	ListByPlan(ctx context.Context, tx Tx, planID string) ([]*model.Claim, error)
	// ListByCafe is the derived cafe-side redemption log (claims joined with
	// user public info).
	ListByCafe(ctx context.Context, tx Tx, cafeID string) ([]*model.RedemptionLogEntry, error)
	// DeleteByPlan purges the claims of a plan cycle being reset by a fresh
	// settlement. This is the only deletion path for claims.
	DeleteByPlan(ctx context.Context, tx Tx, planID string) error
}

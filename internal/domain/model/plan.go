package model

import (
	"time"

	"cafe-passport/internal/domain"
)

// ClaimAllowance is the number of free-item claims granted per plan cycle.
const ClaimAllowance = 10

// LocationPlan is a user's passport for one location: a one-month validity
// window plus a claim balance. One row exists per (user, location) pair ever
// purchased; a renewal resets the row in place rather than appending.
type LocationPlan struct {
	ID              string // UUID
	UserID          string // UUID of owning user
	Location        string
	Active          bool
	OrderID         string // provider order reference of the settling payment
	PurchasedAt     time.Time
	ExpiresAt       time.Time
	RemainingClaims int
	CreatedAt       time.Time
}

func NewLocationPlan(id, userID, location, orderID string, now time.Time) (*LocationPlan, error) {
	if id == "" || userID == "" || location == "" {
		return nil, domain.ErrInvalidArgument
	}
	p := &LocationPlan{
		ID:        id,
		UserID:    userID,
		Location:  location,
		CreatedAt: now,
	}
	p.Reset(orderID, now)
	return p, nil
}

// Reset applies a fresh payment settlement: the window restarts and the
// balance returns to the full allowance. Claims of the prior cycle are purged
// separately by the entitlement use case.
func (p *LocationPlan) Reset(orderID string, now time.Time) {
	p.Active = true
	p.OrderID = orderID
	p.PurchasedAt = now
	p.ExpiresAt = now.AddDate(0, 1, 0)
	p.RemainingClaims = ClaimAllowance
}

// IsUsable reports whether new claims may be issued against this plan. It is
// a pure function of the plan fields and the supplied clock; callers must
// evaluate it fresh on every read, never cache it.
func (p *LocationPlan) IsUsable(now time.Time) bool {
	return p.Active && p.ExpiresAt.After(now) && p.RemainingClaims > 0
}

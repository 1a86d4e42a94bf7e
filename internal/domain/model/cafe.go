package model

import (
	"time"

	"cafe-passport/internal/domain"
)

type Cafe struct {
	ID        string // UUID
	Name      string
	Address   string
	Location  string
	CreatedBy string // admin who registered the cafe
	OwnerID   string // cafe-role user allowed to redeem claims
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCafe(id, name, address, location, createdBy, ownerID string) (*Cafe, error) {
	if id == "" || name == "" || address == "" || location == "" || ownerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Cafe{
		ID:        id,
		Name:      name,
		Address:   address,
		Location:  location,
		CreatedBy: createdBy,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RedemptionLogEntry is the owner-facing view of a claim against a cafe.
// It is derived from the claims store at read time; the claim row is the
// single source of truth for the redeemed flag.
type RedemptionLogEntry struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	Redeemed  bool      `json:"redeemed"`
}

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"cafe-passport/internal/domain"
	"github.com/oklog/ulid/v2"
)

// claimCodeBytes is the entropy of a claim code before hex encoding.
const claimCodeBytes = 12

// Claim is a single-use entitlement token binding one free item at one cafe
// to one plan cycle. Its only transition is unredeemed -> redeemed; there is
// no un-redeem and no independent expiry.
type Claim struct {
	ID         string // ULID, time-ordered
	PlanID     string
	UserID     string
	CafeID     string
	Code       string // opaque, globally unique at issuance
	IssuedAt   time.Time
	Redeemed   bool
	RedeemedAt *time.Time
}

func NewClaim(plan *LocationPlan, cafeID, code string, now time.Time) (*Claim, error) {
	if plan == nil || cafeID == "" || code == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Claim{
		ID:       ulid.Make().String(),
		PlanID:   plan.ID,
		UserID:   plan.UserID,
		CafeID:   cafeID,
		Code:     code,
		IssuedAt: now,
	}, nil
}

// NewClaimCode mints a cryptographically random claim code. Uniqueness is
// enforced at the store; callers retry generation on collision.
func NewClaimCode() (string, error) {
	buf := make([]byte, claimCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

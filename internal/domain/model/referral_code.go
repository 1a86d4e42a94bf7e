package model

import (
	"strings"
	"time"

	"cafe-passport/internal/domain"
)

// ReferralCode is an admin-issued discount code with a usage cap.
type ReferralCode struct {
	ID             string // UUID
	Code           string // stored upper-case
	DiscountAmount int64
	MaxUsage       int
	UsageCount     int
	Active         bool
	CreatedAt      time.Time
}

func NewReferralCode(id, code string, discountAmount int64, maxUsage int) (*ReferralCode, error) {
	if id == "" || code == "" || discountAmount < 0 || maxUsage <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &ReferralCode{
		ID:             id,
		Code:           strings.ToUpper(code),
		DiscountAmount: discountAmount,
		MaxUsage:       maxUsage,
		Active:         true,
		CreatedAt:      time.Now(),
	}, nil
}

// Usable reports whether the code may still be applied.
func (rc *ReferralCode) Usable() bool {
	return rc.Active && rc.UsageCount < rc.MaxUsage
}

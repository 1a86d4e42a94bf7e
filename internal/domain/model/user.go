package model

import (
	"time"

	"cafe-passport/internal/domain"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleCafe  Role = "cafe"
)

// CouponStage tracks the first-purchase discount progression carried over
// from the marketing flow: a fresh account may use FIRST100 once, then
// SECOND100 once, after which no coupon applies.
type CouponStage string

const (
	CouponStageNone      CouponStage = "none"
	CouponStageFirstUsed CouponStage = "first_used"
	CouponStageExhausted CouponStage = "exhausted"
)

type User struct {
	ID           string // UUID
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	ReferralName string
	CouponStage  CouponStage
	CreatedAt    time.Time
}

func NewUser(id, name, email, passwordHash string, role Role) (*User, error) {
	if id == "" || name == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CouponStage:  CouponStageNone,
		CreatedAt:    time.Now(),
	}, nil
}

// PublicInfo is the subset of user fields shown to a cafe owner at
// redemption time.
type PublicInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicInfo {
	return PublicInfo{Name: u.Name, Email: u.Email}
}

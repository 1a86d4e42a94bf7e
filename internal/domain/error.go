package domain

import "errors"

var (
	// Business-rule errors. Each maps to a distinct API error kind and is
	// terminal for the triggering request.
	ErrUserNotFound     = errors.New("user not found")
	ErrCafeNotFound     = errors.New("cafe not found")
	ErrNoActivePlan     = errors.New("no active plan for this location")
	ErrBalanceExhausted = errors.New("no claims remaining for this location")
	ErrDuplicateClaim   = errors.New("an unredeemed claim for this cafe is already outstanding")
	ErrCodeNotFound     = errors.New("claim code not found")
	ErrAlreadyRedeemed  = errors.New("claim code already redeemed")
	ErrUnauthorized     = errors.New("not authorized to perform this action")

	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCodeExhausted      = errors.New("referral code usage limit reached")

	// Infrastructure errors. Surfaced to callers as a generic server fault,
	// distinct from the business kinds above, and safe to retry.
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

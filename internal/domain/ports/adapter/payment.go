package adapter

import "context"

// SettlementNotice is the provider callback for a completed payment, before
// signature verification.
type SettlementNotice struct {
	UserID    string
	Location  string
	OrderID   string
	PaymentID string
	Signature string
	Amount    int64
	Referral  string
	Coupon    string
}

// PaymentGateway verifies provider notices. The HMAC check over
// order+payment id is the gateway's job; the entitlement core trusts
// whatever passes it.
type PaymentGateway interface {
	Name() string
	VerifyNotice(ctx context.Context, n SettlementNotice) error
}

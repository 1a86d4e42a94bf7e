package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type PaymentStatus string

const (
	PaymentStatusSettled PaymentStatus = "settled"
)

// Payment is the audit record of one verified settlement. Signature
// verification happens in the gateway adapter before this record exists;
// the core never re-checks it.
type Payment struct {
	ID        string // ULID
	UserID    string
	Location  string
	Provider  string
	OrderID   string
	PaymentID string
	Amount    int64
	Status    PaymentStatus
	CreatedAt time.Time
}

func NewPayment(userID, location, provider, orderID, paymentID string, amount int64, now time.Time) *Payment {
	return &Payment{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Location:  location,
		Provider:  provider,
		OrderID:   orderID,
		PaymentID: paymentID,
		Amount:    amount,
		Status:    PaymentStatusSettled,
		CreatedAt: now,
	}
}

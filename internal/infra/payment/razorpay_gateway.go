package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog"

	"cafe-passport/internal/domain"
	"cafe-passport/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway verifies settlement callbacks. The provider signs
// "<order_id>|<payment_id>" with the merchant key secret; a notice whose
// signature does not reproduce is rejected before any state changes.
type RazorpayGateway struct {
	keySecret []byte
	log       *zerolog.Logger
}

func NewRazorpayGateway(keySecret string, logger *zerolog.Logger) *RazorpayGateway {
	l := logger.With().Str("component", "RazorpayGateway").Logger()
	return &RazorpayGateway{keySecret: []byte(keySecret), log: &l}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) VerifyNotice(_ context.Context, n adapter.SettlementNotice) error {
	if n.OrderID == "" || n.PaymentID == "" || n.Signature == "" {
		return domain.ErrInvalidArgument
	}

	mac := hmac.New(sha256.New, g.keySecret)
	mac.Write([]byte(n.OrderID + "|" + n.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(n.Signature)) {
		g.log.Warn().Str("order_id", n.OrderID).Msg("settlement signature mismatch")
		return domain.ErrUnauthorized
	}
	return nil
}

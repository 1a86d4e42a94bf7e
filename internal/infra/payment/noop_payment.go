package payment

import (
	"context"

	"cafe-passport/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway accepts every notice. Development and tests only.
type NoopGateway struct{}

func NewNoopGateway() *NoopGateway { return &NoopGateway{} }

func (*NoopGateway) Name() string { return "noop" }

func (*NoopGateway) VerifyNotice(context.Context, adapter.SettlementNotice) error { return nil }

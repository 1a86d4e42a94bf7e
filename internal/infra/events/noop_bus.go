package events

import (
	"context"

	"cafe-passport/internal/domain/ports/adapter"
)

var _ adapter.EventPublisher = (*NoopBus)(nil)

// NoopBus satisfies the publisher and subscriber surfaces when no broker is
// configured (single-process deployments, tests).
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (*NoopBus) Publish(context.Context, string, interface{}) error { return nil }

func (*NoopBus) Subscribe(string, func(msg *Message)) error { return nil }

func (*NoopBus) QueueSubscribe(string, string, func(msg *Message)) error { return nil }

func (*NoopBus) Close() error { return nil }

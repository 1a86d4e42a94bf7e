package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cafe-passport/internal/domain/ports/adapter"
)

var _ adapter.EventPublisher = (*LocalBus)(nil)

// LocalBus is the in-process bus used when no broker is configured. It keeps
// the publisher/subscriber wiring identical to the NATS path, so a
// single-binary deployment and a multi-instance one differ only in config.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(msg *Message)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]func(msg *Message))}
}

func (b *LocalBus) Publish(_ context.Context, subject string, data interface{}) error {
	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
	}

	b.mu.RLock()
	handlers := b.handlers[subject]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(&Message{Subject: subject, Data: payload, Timestamp: time.Now()})
	}
	return nil
}

func (b *LocalBus) Subscribe(subject string, handler func(msg *Message)) error {
	b.mu.Lock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	b.mu.Unlock()
	return nil
}

func (b *LocalBus) QueueSubscribe(subject, _ string, handler func(msg *Message)) error {
	return b.Subscribe(subject, handler)
}

func (b *LocalBus) Close() error { return nil }

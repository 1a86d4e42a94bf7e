package events

import (
	"context"

	"github.com/rs/zerolog"

	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/infra/worker"
)

var _ adapter.EventPublisher = (*AsyncPublisher)(nil)

// AsyncPublisher hands publishes to the worker pool so the write path never
// waits on the broker. A saturated pool drops the event; clients reconcile
// on reconnect, so a dropped notification costs one refresh at worst.
type AsyncPublisher struct {
	inner adapter.EventPublisher
	pool  *worker.Pool
	log   *zerolog.Logger
}

func NewAsyncPublisher(inner adapter.EventPublisher, pool *worker.Pool, logger *zerolog.Logger) *AsyncPublisher {
	l := logger.With().Str("component", "AsyncPublisher").Logger()
	return &AsyncPublisher{inner: inner, pool: pool, log: &l}
}

func (p *AsyncPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	err := p.pool.Submit(func(ctx context.Context) error {
		return p.inner.Publish(ctx, subject, data)
	})
	if err != nil {
		p.log.Warn().Err(err).Str("subject", subject).Msg("event dropped")
	}
	return nil
}

package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cafe-passport/internal/domain/ports/repository"
	"cafe-passport/internal/infra/metrics"
)

// ExpiryWorker periodically flips active=false on plans whose window has
// closed. It is tidiness plus metrics only: every read path re-evaluates
// usability against the clock, so correctness never waits on this loop.
type ExpiryWorker struct {
	interval time.Duration
	plans    repository.LocationPlanRepository
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, plans repository.LocationPlanRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		plans:    plans,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.plans.DeactivateExpired(ctx, nil)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
				continue
			}
			if n > 0 {
				metrics.IncPlansExpired(n)
				w.log.Info().Int("count", n).Msg("expired plans deactivated")
			}
			if counts, err := w.plans.CountActiveByLocation(ctx, nil); err == nil {
				metrics.SetActivePlans(counts)
			}
		}
	}
}

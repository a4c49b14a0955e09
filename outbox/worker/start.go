package worker

import (
	"context"
	"time"

	"mailflock/newsletter-outbox/config"
	"mailflock/newsletter-outbox/log"
)

// Start launches the configured number of delivery worker loops. It
// returns immediately; the loops stop when the context is cancelled.
func Start(ctx context.Context, cfg *config.Config, repo repository, transport sender) {
	log.Logger.WithField("config", cfg).Info("starting newsletter delivery workers")

	for i := 0; i < cfg.WorkerConcurrency; i++ {
		go New(repo, transport).Run(ctx, cfg.GetPollIntervalDurationInMs())
	}
}

// Run keeps dequeuing until the queue is empty, then idles for the
// given interval before trying again.
func (w Worker) Run(ctx context.Context, idleInterval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := w.TryExecuteTask(ctx)
		if err != nil {
			log.Logger.WithError(err).Error("an unexpected error occurred executing a delivery task")
			w.idle(ctx, idleInterval)
			continue
		}

		if res == EmptyQueue {
			w.idle(ctx, idleInterval)
		}
	}
}

func (w Worker) idle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

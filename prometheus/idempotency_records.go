package prometheus

import (
	"context"
	"time"

	"mailflock/newsletter-outbox/log"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var idempotencyRecords prom.Gauge

type completedCounter interface {
	GetCompletedCount() (uint, error)
}

func init() {
	idempotencyRecords = promauto.NewGauge(prom.GaugeOpts{
		Name: "newsletter_idempotency_completed_records",
		Help: "The number of completed idempotency records retained in the store",
	})
}

// ObserveIdempotencyRecords tracks the growth of the idempotency table,
// which only shrinks when the cleanup job runs.
func ObserveIdempotencyRecords(counter completedCounter, ctx context.Context) {
	for {
		count, err := counter.GetCompletedCount()
		if err != nil {
			log.Logger.WithError(err).Error("an error occurred counting completed idempotency records")
			time.Sleep(time.Second * 1)
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
			idempotencyRecords.Set(float64(count))

			time.Sleep(time.Second * 1)
		}
	}
}

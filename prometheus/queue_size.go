package prometheus

import (
	"context"
	"time"

	"mailflock/newsletter-outbox/log"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deliveryQueueSize prom.Gauge

type queueSizer interface {
	GetQueueSize() (uint, error)
}

func init() {
	deliveryQueueSize = promauto.NewGauge(prom.GaugeOpts{
		Name: "newsletter_delivery_queue_size",
		Help: "The current size of the delivery queue (all pending tasks)",
	})
}

func ObserveQueueSize(sizer queueSizer, ctx context.Context) {
	for {
		size, err := sizer.GetQueueSize()
		if err != nil {
			log.Logger.WithError(err).Error("an error occurred determining the size of the delivery queue")
			time.Sleep(time.Second * 1)
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
			deliveryQueueSize.Set(float64(size))

			time.Sleep(time.Second * 1)
		}
	}
}

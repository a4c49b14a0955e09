package prometheus

import (
	"context"
	"time"

	"mailflock/newsletter-outbox/log"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var issuesPublished prom.Gauge

type totalSizer interface {
	GetTotalSize() (uint, error)
}

func init() {
	issuesPublished = promauto.NewGauge(prom.GaugeOpts{
		Name: "newsletter_issues_published_total",
		Help: "The total number of newsletter issues published",
	})
}

func ObserveTotalSize(repo totalSizer, ctx context.Context) {
	for {
		size, err := repo.GetTotalSize()
		if err != nil {
			log.Logger.WithError(err).Error("an error occurred determining the number of published issues")
			time.Sleep(time.Second * 1)
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
			issuesPublished.Set(float64(size))

			time.Sleep(time.Second * 1)
		}
	}
}

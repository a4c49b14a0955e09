package prometheus

import (
	"net/http"

	"mailflock/newsletter-outbox/config"
	h "mailflock/newsletter-outbox/http"
	"mailflock/newsletter-outbox/log"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func StartHttpServer(cfg *config.Config, db h.Pinger, publish http.Handler) {
	http.Handle("/metrics", promhttp.Handler())
	http.Handle("/healthz", h.NewHealthzHandler(cfg.GetDependencySystemAddresses(), db))
	http.Handle("/admin/newsletters", publish)

	err := http.ListenAndServe(":80", nil)
	if err != nil {
		log.Logger.Fatalf("failed to start HTTP server: %s", err)
	}
}

package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"mailflock/newsletter-outbox/config"
	"mailflock/newsletter-outbox/email"
	h "mailflock/newsletter-outbox/http"
	"mailflock/newsletter-outbox/idempotency"
	"mailflock/newsletter-outbox/job"
	"mailflock/newsletter-outbox/log"
	"mailflock/newsletter-outbox/outbox"
	"mailflock/newsletter-outbox/outbox/data"
	"mailflock/newsletter-outbox/outbox/worker"
	"mailflock/newsletter-outbox/prometheus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	cfg, err := config.NewConfig()
	if err != nil {
		log.Logger.Fatalf("unable to create configuration: %s", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	db, dbClose := data.NewDB(cfg)
	defer dbClose()

	var exitCode int
	switch {
	case cfg.RunCleanup:
		exitCode = job.RunCleanup(idempotency.NewStore(db, cfg), cfg)
	case cfg.RunOptimize:
		exitCode = job.RunOptimize(db, cfg)
	default:
		runMainApp(ctx, db, cfg)
	}

	if exitCode > 0 {
		dbClose() // we call this manually because os.Exit() does not respect defer
		os.Exit(exitCode)
	}
}

func runMainApp(ctx context.Context, db *sql.DB, cfg *config.Config) {
	store := idempotency.NewStore(db, cfg)
	writer := outbox.NewWriter(cfg)
	repo := outbox.NewRepository(db, cfg)
	transport := email.NewClient(cfg)

	worker.Start(ctx, cfg, repo, transport)

	go prometheus.ObserveQueueSize(repo, ctx)
	go prometheus.ObserveTotalSize(repo, ctx)
	go prometheus.ObserveIdempotencyRecords(store, ctx)

	prometheus.StartHttpServer(cfg, db, h.NewPublishHandler(store, writer))
}

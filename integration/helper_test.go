//go:build integration
// +build integration

package integration

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"time"

	"mailflock/newsletter-outbox/config"
	apphttp "mailflock/newsletter-outbox/http"
	"mailflock/newsletter-outbox/idempotency"
	h "mailflock/newsletter-outbox/integration/http"
	"mailflock/newsletter-outbox/outbox"
	"mailflock/newsletter-outbox/outbox/data"
)

const (
	testModeDocker = "docker"
	testUserId     = "c6b2ce98-2dd6-43ac-96f5-6c2a23c35b64"
)

var (
	cfg            *config.Config
	db             *sql.DB
	store          idempotency.Store
	repo           outbox.Repository
	writer         outbox.Writer
	server         *httptest.Server
	publishHandler http.Handler
)

func init() {
	server = httptest.NewServer(h.GetHttpTestHandlerFunc())
	setupConfig()

	db, _ = data.NewDB(cfg)
	purgeNewsletterTables()

	store = idempotency.NewStore(db, cfg)
	repo = outbox.NewRepository(db, cfg)
	writer = outbox.NewWriter(cfg)
	publishHandler = apphttp.NewPublishHandler(store, writer)
}

func setupConfig() *config.Config {
	var runInDocker bool
	if os.Getenv("GO_TEST_MODE") == testModeDocker {
		runInDocker = true
	}

	cfg = &config.Config{
		DBUser:                "newsletter-outbox",
		DBPass:                "newsletter-outbox",
		DBSchema:              "newsletter-outbox",
		EmailApiUrl:           server.URL,
		EmailApiToken:         "test-token",
		EmailSender:           "updates@mailflock.test",
		EmailTimeoutMs:        2000,
		WorkerConcurrency:     2,
		PollFrequencyMs:       100,
		IdempotencyWaitMs:     2000,
		CleanupRetentionHours: 1,
	}

	if os.Getenv("DB_DRIVER") == string(config.MySQL) {
		cfg.DBDriver = config.MySQL
		cfg.DBPort = 13306
	} else {
		cfg.DBDriver = config.Postgres
		cfg.DBPort = 15432
	}

	if runInDocker {
		cfg.DBHost = cfg.DBDriver.String()
		cfg.DBPort = cfg.DBPort - 10000
	} else {
		cfg.DBHost = "localhost"
	}

	return cfg
}

func postPublish(userId, key, title, textContent, htmlContent string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("title", title)
	form.Set("text_content", textContent)
	form.Set("html_content", htmlContent)

	req := httptest.NewRequest(http.MethodPost, "/admin/newsletters", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-User-Id", userId)
	req.Header.Set("Idempotency-Key", key)

	rec := httptest.NewRecorder()
	publishHandler.ServeHTTP(rec, req)

	return rec
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}

	return cond()
}

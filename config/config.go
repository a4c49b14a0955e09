package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"mailflock/newsletter-outbox/log"

	"github.com/alexflint/go-arg"
)

const (
	MySQL    DbDriver = "mysql"
	Postgres DbDriver = "postgres"
)

type DbDriver string

var supportedDbTypes = map[DbDriver]bool{
	Postgres: true,
	MySQL:    true,
}

type Config struct {
	SkipMigrations          bool     `arg:"--skip-migrations,env:SKIP_MIGRATIONS"`
	DBHost                  string   `arg:"--db-host,env:DB_HOST,required"`
	DBPort                  uint32   `arg:"--db-port,env:DB_PORT,required"`
	DBUser                  string   `arg:"--db-user,env:DB_USER,required"`
	DBPass                  string   `arg:"--db-pass,env:DB_PASS,required"`
	DBSchema                string   `arg:"--db-schema,env:DB_SCHEMA,required"`
	DBDriver                DbDriver `arg:"--db-driver,env:DB_DRIVER,required"`
	TLSEnable               bool     `arg:"--db-tls,env:TLS_ENABLE"`
	TLSSkipVerifyPeer       bool     `arg:"--db-tls-verify-peer,env:TLS_SKIP_VERIFY_PEER"`
	EmailApiUrl             string   `arg:"--email-api-url,env:EMAIL_API_URL,required"`
	EmailApiToken           string   `arg:"--email-api-token,env:EMAIL_API_TOKEN,required"`
	EmailSender             string   `arg:"--email-sender,env:EMAIL_SENDER,required"`
	EmailTimeoutMs          int      `arg:"--email-timeout-ms,env:EMAIL_TIMEOUT_MS"`
	WorkerConcurrency       int      `arg:"--worker-concurrency,env:WORKER_CONCURRENCY"`
	PollFrequencyMs         int      `arg:"--poll-frequency-ms,env:POLL_FREQUENCY_MS"`
	IdempotencyWaitMs       int      `arg:"--idempotency-wait-ms,env:IDEMPOTENCY_WAIT_MS"`
	RunCleanup              bool     `arg:"--cleanup,env:RUN_CLEANUP"`
	RunOptimize             bool     `arg:"--optimize,env:RUN_OPTIMIZE"`
	CleanupRetentionHours   int      `arg:"--cleanup-retention-hours,env:CLEANUP_RETENTION_HOURS"`
	SidecarProxyUrl         string   `arg:"--sidecar-proxy-url,env:SIDECAR_PROXY_URL"`
}

func NewConfig() (*Config, error) {
	c := &Config{
		WorkerConcurrency:     1,
		PollFrequencyMs:       500,
		IdempotencyWaitMs:     5000,
		EmailTimeoutMs:        10000,
		CleanupRetentionHours: 72,
	}
	arg.MustParse(c)

	if !supportedDbTypes[c.DBDriver] {
		return nil, fmt.Errorf("the DB_DRIVER provided (%s) is not supported", c.DBDriver)
	}

	return c, nil
}

func (c *Config) GetPollIntervalDurationInMs() time.Duration {
	return time.Duration(c.PollFrequencyMs) * time.Millisecond
}

func (c *Config) GetIdempotencyWaitDuration() time.Duration {
	return time.Duration(c.IdempotencyWaitMs) * time.Millisecond
}

func (c *Config) GetEmailTimeoutDuration() time.Duration {
	return time.Duration(c.EmailTimeoutMs) * time.Millisecond
}

func (c *Config) GetCleanupRetentionDuration() time.Duration {
	return time.Duration(c.CleanupRetentionHours) * time.Hour
}

func (c *Config) GetDSN() string {
	switch c.DBDriver {
	case MySQL:
		tls := "false"
		if c.TLSEnable {
			if c.TLSSkipVerifyPeer {
				tls = "skip-verify"
			} else {
				tls = "true"
			}
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=%s&multiStatements=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBSchema, tls)
	case Postgres:
		sslMode := "disable"
		if c.TLSEnable {
			if c.TLSSkipVerifyPeer {
				sslMode = "require"
			} else {
				sslMode = "verify-full"
			}
		}
		return fmt.Sprintf("%s://%s@%s:%d/%s?sslmode=%s", c.DBDriver, url.UserPassword(c.DBUser, c.DBPass), c.DBHost, c.DBPort, c.DBSchema, sslMode)
	default:
		log.Logger.Fatalf("the DB driver configured (%s) is not supported", c.DBDriver)
		return ""
	}
}

func (c *Config) GetDependencySystemAddresses() []string {
	u, err := url.Parse(c.EmailApiUrl)
	if err != nil || u.Host == "" {
		return []string{}
	}

	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = host + ":443"
		default:
			host = host + ":80"
		}
	}

	return []string{host}
}

func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"SkipMigrations":        c.SkipMigrations,
		"DBHost":                c.DBHost,
		"DBPort":                c.DBPort,
		"DBUser":                c.DBUser,
		"DBPass":                "xxxxx",
		"DBSchema":              c.DBSchema,
		"DBDriver":              c.DBDriver,
		"TLSEnable":             c.TLSEnable,
		"TLSSkipVerifyPeer":     c.TLSSkipVerifyPeer,
		"EmailApiUrl":           c.EmailApiUrl,
		"EmailApiToken":         "xxxxx",
		"EmailSender":           c.EmailSender,
		"EmailTimeoutMs":        c.EmailTimeoutMs,
		"WorkerConcurrency":     c.WorkerConcurrency,
		"PollFrequencyMs":       c.PollFrequencyMs,
		"IdempotencyWaitMs":     c.IdempotencyWaitMs,
		"RunCleanup":            c.RunCleanup,
		"RunOptimize":           c.RunOptimize,
		"CleanupRetentionHours": c.CleanupRetentionHours,
		"SidecarProxyUrl":       c.SidecarProxyUrl,
	})
}

func (d DbDriver) MySQL() bool {
	return d == MySQL
}

func (d DbDriver) Postgres() bool {
	return d == Postgres
}

func (d DbDriver) String() string {
	return string(d)
}

package job

import (
	"net/http"
	"time"

	"mailflock/newsletter-outbox/config"
	"mailflock/newsletter-outbox/log"
)

type completedRecordsDeleter interface {
	DeleteCompletedBefore(olderThan time.Time) (int64, error)
}

// cleanup prunes completed idempotency records older than the
// configured retention. In-flight records are never removed, so a
// command still executing is unaffected. Replay stops working for the
// pruned keys; the retention should comfortably exceed the longest
// plausible client retry window.
type cleanup struct {
	deleter   completedRecordsDeleter
	retention time.Duration
	SidecarQuitter
}

func RunCleanup(deleter completedRecordsDeleter, cfg *config.Config) int {
	j := newCleanupWithDefaultClient(deleter, cfg.GetCleanupRetentionDuration())
	if cfg.SidecarProxyUrl != "" {
		j.EnableSideCarProxyQuit(cfg.SidecarProxyUrl)
	}

	_, err := j.Execute()
	if err != nil {
		return 1
	}

	return 0
}

func newCleanupWithDefaultClient(deleter completedRecordsDeleter, retention time.Duration) *cleanup {
	return newCleanup(deleter, retention, http.DefaultClient)
}

func newCleanup(deleter completedRecordsDeleter, retention time.Duration, cl httpPoster) *cleanup {
	return &cleanup{
		deleter:   deleter,
		retention: retention,
		SidecarQuitter: SidecarQuitter{
			Client: cl,
		},
	}
}

func (c *cleanup) Execute() (int64, error) {
	rows, err := c.deleter.DeleteCompletedBefore(time.Now().Add(-c.retention))
	if err != nil {
		log.Logger.WithError(err).Error("an error occurred whilst deleting completed idempotency records")
		return 0, err
	}

	log.Logger.Infof("deleted %d completed idempotency records", rows)

	if c.QuitSidecar {
		err = c.Quit()
		if err != nil {
			return 0, err
		}
	}

	return rows, nil
}

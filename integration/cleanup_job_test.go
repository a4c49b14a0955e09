//go:build integration
// +build integration

package integration

import (
	"testing"
	"time"

	h "mailflock/newsletter-outbox/integration/http"
	"mailflock/newsletter-outbox/job"

	"github.com/google/uuid"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCleanupJobRemovesOldCompletedIdempotencyRecords(t *testing.T) {
	purgeNewsletterTables()
	h.Reset()

	Convey("Given completed and in-flight idempotency records of varying age", t, func() {
		userId := uuid.MustParse(testUserId)
		old := time.Now().Add(time.Duration(-2) * time.Hour)
		insertCompletedIdempotencyRecord(userId, "old-completed", old)
		insertCompletedIdempotencyRecord(userId, "recent-completed", time.Now())
		insertInFlightIdempotencyRecord(userId, "old-in-flight", old)

		Convey("When we execute a cleanup of the idempotency store", func() {
			cleanupCfg := *cfg
			cleanupCfg.SidecarProxyUrl = server.URL
			code := job.RunCleanup(store, &cleanupCfg)

			Convey("Then only the expired completed record is removed", func() {
				So(code, ShouldEqual, 0)
				So(countIdempotencyRecords(), ShouldEqual, 2)
				So(h.Recvd["/quitquitquit"], ShouldBeTrue)
			})
		})
	})
}

package worker

import (
	"context"
	"testing"
	"time"

	"mailflock/newsletter-outbox/config"
	"mailflock/newsletter-outbox/outbox"
	outboxtest "mailflock/newsletter-outbox/outbox/test"
	"mailflock/newsletter-outbox/outbox/worker/test"

	"github.com/google/uuid"
)

func TestStart_ConcurrentWorkersDrainTheQueue(t *testing.T) {
	issue := outbox.NewsletterIssue{Id: uuid.New(), Title: "t", TextContent: "txt", HtmlContent: "html"}

	repo := outboxtest.NewMockRepository()
	claims := make([]*outboxtest.MockClaim, 0, 100)
	for i := 0; i < 100; i++ {
		c := outboxtest.NewMockClaim(outbox.DeliveryTask{NewsletterIssueId: issue.Id, SubscriberEmail: "jane@example.com"}, issue)
		claims = append(claims, c)
		repo.AddClaim(c)
	}

	transport := test.NewMockSender()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{WorkerConcurrency: 2, PollFrequencyMs: 5}
	Start(ctx, cfg, repo, transport)

	deadline := time.Now().Add(time.Second * 5)
	for transport.SendCallCount() < 100 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond * 10)
	}
	cancel()

	if got := transport.SendCallCount(); got != 100 {
		t.Fatalf("expected a total delivery attempt count of exactly 100, got %d", got)
	}

	for i, c := range claims {
		if !c.WasCompleted() {
			t.Errorf("task %d was never removed from the queue", i)
		}
	}
}

func TestWorker_RunStopsOnContextCancellation(t *testing.T) {
	repo := outboxtest.NewMockRepository()
	transport := test.NewMockSender()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(repo, transport).Run(ctx, time.Millisecond*5)
		close(done)
	}()

	time.Sleep(time.Millisecond * 30)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("expected the worker loop to stop once the context is cancelled")
	}
}

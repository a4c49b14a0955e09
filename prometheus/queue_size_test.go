package prometheus

import (
	"context"
	"testing"
	"time"

	"mailflock/newsletter-outbox/outbox/test"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQueueSize(t *testing.T) {
	repo := test.NewMockRepository()
	repo.SetQueueSize(32)

	ctx, cancel := context.WithCancel(context.Background())
	go ObserveQueueSize(repo, ctx)
	time.Sleep(time.Millisecond * 100)
	cancel()

	actual := testutil.ToFloat64(deliveryQueueSize)
	if actual != 32.00 {
		t.Errorf("expected deliveryQueueSize to be 32.000000, but got %f", actual)
	}
}

func TestObserveQueueSize_WithRepositoryError(t *testing.T) {
	deliveryQueueSize.Set(0.0)
	repo := test.NewMockRepository()
	repo.ReturnErrors()

	ctx, cancel := context.WithCancel(context.Background())
	go ObserveQueueSize(repo, ctx)
	time.Sleep(time.Millisecond * 100)
	cancel()

	actual := testutil.ToFloat64(deliveryQueueSize)
	if actual != 0.00 {
		t.Errorf("expected deliveryQueueSize to be 0.000000, but got %f", actual)
	}
}

package worker

import (
	"context"

	"mailflock/newsletter-outbox/email"
	"mailflock/newsletter-outbox/log"
	"mailflock/newsletter-outbox/outbox"

	"github.com/sirupsen/logrus"
)

// Result describes the outcome of a single dequeue attempt.
type Result int

const (
	// TaskCompleted means a task was claimed and removed from the
	// queue, whether or not its delivery attempt succeeded.
	TaskCompleted Result = iota
	// EmptyQueue means no unclaimed task existed; the caller should
	// idle before trying again.
	EmptyQueue
)

type repository interface {
	ClaimTask(ctx context.Context) (outbox.Claim, error)
}

type sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// Worker drains the delivery task queue one task at a time. Any number
// of instances may run concurrently, in this process or others; they
// coordinate purely through the repository's row locks.
type Worker struct {
	repo      repository
	transport sender
}

func New(r repository, t sender) Worker {
	return Worker{
		repo:      r,
		transport: t,
	}
}

// TryExecuteTask claims one task, attempts delivery once and removes
// the task. A malformed stored address or a transport failure is
// logged and the task is still removed; neither condition is retried.
func (w Worker) TryExecuteTask(ctx context.Context) (Result, error) {
	claim, err := w.repo.ClaimTask(ctx)
	if err == outbox.ErrEmptyQueue {
		return EmptyQueue, nil
	}
	if err != nil {
		return EmptyQueue, err
	}

	task := claim.Task()
	issue := claim.Issue()

	fields := logrus.Fields{
		"newsletter_issue_id": task.NewsletterIssueId.String(),
		"subscriber_email":    task.SubscriberEmail,
	}

	addr, parseErr := email.ParseAddress(task.SubscriberEmail)
	if parseErr != nil {
		log.Logger.WithError(parseErr).WithFields(fields).Warn("skipping a subscriber, their stored contact details are invalid")
	} else if sendErr := w.transport.Send(ctx, addr, issue.Title, issue.HtmlContent, issue.TextContent); sendErr != nil {
		log.Logger.WithError(sendErr).WithFields(fields).Error("failed to deliver a newsletter issue to a subscriber, the task will not be retried")
	}

	if err = claim.Complete(ctx); err != nil {
		// the claiming transaction is gone, the task stays queued for
		// another worker
		return EmptyQueue, err
	}

	return TaskCompleted, nil
}

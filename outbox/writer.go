package outbox

import (
	"context"
	"database/sql"

	"mailflock/newsletter-outbox/config"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Writer persists a newsletter issue and enqueues one delivery task per
// confirmed subscriber. Both inserts run on the transaction supplied by
// the caller, which is expected to be an idempotency processing ticket,
// so the issue, its tasks and the idempotency record commit or abort
// together.
type Writer struct {
	queryProvider queryProvider
}

func NewWriter(cfg *config.Config) Writer {
	return NewWriterWithQueryProvider(newQueryProvider(cfg.DBDriver))
}

func NewWriterWithQueryProvider(qp queryProvider) Writer {
	return Writer{queryProvider: qp}
}

// EnqueueIssue inserts the issue row and then the delivery tasks with a
// single INSERT .. SELECT over the confirmed subscribers, so the
// recipient snapshot is taken at the instant of the insert.
func (w Writer) EnqueueIssue(ctx context.Context, tx *sql.Tx, title, textContent, htmlContent string) (uuid.UUID, error) {
	issueId := uuid.New()

	_, err := tx.ExecContext(ctx, w.queryProvider.IssueInsertSql(), issueId, title, textContent, htmlContent)
	if err != nil {
		return uuid.Nil, errors.Errorf("outbox: error inserting the newsletter issue: %s", err)
	}

	_, err = tx.ExecContext(ctx, w.queryProvider.TaskEnqueueSql(), issueId)
	if err != nil {
		return uuid.Nil, errors.Errorf("outbox: error enqueueing delivery tasks for issue %s: %s", issueId, err)
	}

	return issueId, nil
}

package outbox

import (
	"context"
	"database/sql"

	"mailflock/newsletter-outbox/config"
	s "mailflock/newsletter-outbox/outbox/data/sql"

	"github.com/pkg/errors"
)

// ErrEmptyQueue is returned by ClaimTask when no unclaimed delivery
// task exists.
var ErrEmptyQueue = errors.New("no tasks in the delivery queue")

type queryProvider interface {
	IssueInsertSql() string
	IssueFetchSql() string
	TaskEnqueueSql() string
	TaskClaimSql() string
	TaskDeleteSql() string
	GetQueueSizeSql() string
	GetTotalSizeSql() string
}

// Claim is a delivery task locked by this process. The row lock is held
// by an open transaction until Complete or Release is called; a crash
// in between releases the lock and leaves the task for another worker.
type Claim interface {
	Task() DeliveryTask
	Issue() NewsletterIssue
	// Complete deletes the task row and commits, in one transaction
	// with the lock that claimed it.
	Complete(ctx context.Context) error
	// Release rolls the claiming transaction back, returning the task
	// to the queue untouched.
	Release() error
}

type Repository struct {
	db            *sql.DB
	queryProvider queryProvider
}

func NewRepository(db *sql.DB, cfg *config.Config) Repository {
	return NewRepositoryWithQueryProvider(db, newQueryProvider(cfg.DBDriver))
}

func NewRepositoryWithQueryProvider(db *sql.DB, qp queryProvider) Repository {
	return Repository{
		db:            db,
		queryProvider: qp,
	}
}

// ClaimTask locks one delivery task, skipping rows already locked by
// concurrent workers, and resolves the issue content it belongs to.
// The special ErrEmptyQueue value is returned when every row is either
// absent or claimed elsewhere.
func (r Repository) ClaimTask(ctx context.Context) (Claim, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Errorf("outbox: error starting a claim transaction: %s", err)
	}

	var task DeliveryTask
	row := tx.QueryRowContext(ctx, r.queryProvider.TaskClaimSql())
	err = row.Scan(&task.NewsletterIssueId, &task.SubscriberEmail)
	if err == sql.ErrNoRows {
		_ = tx.Commit()
		return nil, ErrEmptyQueue
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, errors.Errorf("outbox: error locking a delivery task: %s", err)
	}

	issue := NewsletterIssue{Id: task.NewsletterIssueId}
	row = tx.QueryRowContext(ctx, r.queryProvider.IssueFetchSql(), task.NewsletterIssueId)
	err = row.Scan(&issue.Title, &issue.TextContent, &issue.HtmlContent)
	if err != nil {
		_ = tx.Rollback()
		return nil, errors.Errorf("outbox: error fetching issue %s for a claimed task: %s", task.NewsletterIssueId, err)
	}

	return &claimedTask{
		task:          task,
		issue:         issue,
		tx:            tx,
		queryProvider: r.queryProvider,
	}, nil
}

func (r Repository) GetQueueSize() (uint, error) {
	res := r.db.QueryRow(r.queryProvider.GetQueueSizeSql())

	var count uint
	if err := res.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r Repository) GetTotalSize() (uint, error) {
	res := r.db.QueryRow(r.queryProvider.GetTotalSizeSql())

	var count uint
	if err := res.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

type claimedTask struct {
	task          DeliveryTask
	issue         NewsletterIssue
	tx            *sql.Tx
	queryProvider queryProvider
}

func (c *claimedTask) Task() DeliveryTask {
	return c.task
}

func (c *claimedTask) Issue() NewsletterIssue {
	return c.issue
}

func (c *claimedTask) Complete(ctx context.Context) error {
	_, err := c.tx.ExecContext(ctx, c.queryProvider.TaskDeleteSql(), c.task.NewsletterIssueId, c.task.SubscriberEmail)
	if err != nil {
		_ = c.tx.Rollback()
		return errors.Errorf("outbox: error deleting completed delivery task: %s", err)
	}

	if err = c.tx.Commit(); err != nil {
		return errors.Errorf("outbox: error committing completed delivery task: %s", err)
	}

	return nil
}

func (c *claimedTask) Release() error {
	return c.tx.Rollback()
}

func newQueryProvider(d config.DbDriver) queryProvider {
	switch true {
	case d.Postgres():
		return s.NewPostgresQueryProvider()
	case d.MySQL():
		return s.NewMysqlQueryProvider()
	}

	return nil
}

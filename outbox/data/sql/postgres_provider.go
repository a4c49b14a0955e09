package sql

import (
	"fmt"
)

type PostgresQueryProvider struct {
	IdempotencyTable   string
	IssueTable         string
	TaskTable          string
	SubscriptionsTable string
}

func NewPostgresQueryProvider() *PostgresQueryProvider {
	return &PostgresQueryProvider{
		IdempotencyTable:   "idempotency",
		IssueTable:         "newsletter_issue",
		TaskTable:          "delivery_task",
		SubscriptionsTable: "subscriptions",
	}
}

func (p PostgresQueryProvider) IdempotencyInsertSql() string {
	q := `INSERT INTO %s (user_id, idempotency_key, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (user_id, idempotency_key) DO NOTHING`

	return fmt.Sprintf(q, p.IdempotencyTable)
}

func (p PostgresQueryProvider) IdempotencyFetchSql() string {
	q := `SELECT response_status_code, response_headers, response_body FROM %s WHERE user_id = $1 AND idempotency_key = $2`

	return fmt.Sprintf(q, p.IdempotencyTable)
}

func (p PostgresQueryProvider) IdempotencyCompleteSql() string {
	q := `UPDATE %s SET response_status_code = $1, response_headers = $2, response_body = $3 WHERE user_id = $4 AND idempotency_key = $5`

	return fmt.Sprintf(q, p.IdempotencyTable)
}

func (p PostgresQueryProvider) IdempotencyDeleteCompletedSql() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE response_status_code IS NOT NULL AND created_at <= $1`, p.IdempotencyTable)
}

func (p PostgresQueryProvider) IdempotencyCompletedCountSql() string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE response_status_code IS NOT NULL`, p.IdempotencyTable)
}

func (p PostgresQueryProvider) IssueInsertSql() string {
	q := `INSERT INTO %s (id, title, text_content, html_content, published_at) VALUES ($1, $2, $3, $4, NOW())`

	return fmt.Sprintf(q, p.IssueTable)
}

func (p PostgresQueryProvider) IssueFetchSql() string {
	return fmt.Sprintf(`SELECT title, text_content, html_content FROM %s WHERE id = $1`, p.IssueTable)
}

// TaskEnqueueSql selects the confirmed subscribers inside the INSERT
// itself, so the snapshot of recipients and the enqueue are a single
// statement with no read-then-write race window.
func (p PostgresQueryProvider) TaskEnqueueSql() string {
	q := `INSERT INTO %s (newsletter_issue_id, subscriber_email) SELECT $1, email FROM %s WHERE status = 'confirmed'`

	return fmt.Sprintf(q, p.TaskTable, p.SubscriptionsTable)
}

// TaskClaimSql skips rows locked by concurrent workers, so two worker
// instances never observe the same task.
func (p PostgresQueryProvider) TaskClaimSql() string {
	return fmt.Sprintf(`SELECT newsletter_issue_id, subscriber_email FROM %s FOR UPDATE SKIP LOCKED LIMIT 1`, p.TaskTable)
}

func (p PostgresQueryProvider) TaskDeleteSql() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE newsletter_issue_id = $1 AND subscriber_email = $2`, p.TaskTable)
}

func (p PostgresQueryProvider) GetQueueSizeSql() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", p.TaskTable)
}

func (p PostgresQueryProvider) GetTotalSizeSql() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", p.IssueTable)
}

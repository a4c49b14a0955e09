package sql

import (
	"fmt"
)

type MysqlQueryProvider struct {
	IdempotencyTable   string
	IssueTable         string
	TaskTable          string
	SubscriptionsTable string
}

func NewMysqlQueryProvider() *MysqlQueryProvider {
	return &MysqlQueryProvider{
		IdempotencyTable:   "idempotency",
		IssueTable:         "newsletter_issue",
		TaskTable:          "delivery_task",
		SubscriptionsTable: "subscriptions",
	}
}

func (m MysqlQueryProvider) IdempotencyInsertSql() string {
	q := "INSERT IGNORE INTO `%s` (`user_id`, `idempotency_key`, `created_at`) VALUES (?, ?, NOW())"

	return fmt.Sprintf(q, m.IdempotencyTable)
}

func (m MysqlQueryProvider) IdempotencyFetchSql() string {
	q := "SELECT `response_status_code`, `response_headers`, `response_body` FROM `%s` WHERE `user_id` = ? AND `idempotency_key` = ?"

	return fmt.Sprintf(q, m.IdempotencyTable)
}

func (m MysqlQueryProvider) IdempotencyCompleteSql() string {
	q := "UPDATE `%s` SET `response_status_code` = ?, `response_headers` = ?, `response_body` = ? WHERE `user_id` = ? AND `idempotency_key` = ?"

	return fmt.Sprintf(q, m.IdempotencyTable)
}

func (m MysqlQueryProvider) IdempotencyDeleteCompletedSql() string {
	return fmt.Sprintf("DELETE FROM `%s` WHERE `response_status_code` IS NOT NULL AND `created_at` <= ?", m.IdempotencyTable)
}

func (m MysqlQueryProvider) IdempotencyCompletedCountSql() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE `response_status_code` IS NOT NULL", m.IdempotencyTable)
}

func (m MysqlQueryProvider) IssueInsertSql() string {
	q := "INSERT INTO `%s` (`id`, `title`, `text_content`, `html_content`, `published_at`) VALUES (?, ?, ?, ?, NOW())"

	return fmt.Sprintf(q, m.IssueTable)
}

func (m MysqlQueryProvider) IssueFetchSql() string {
	return fmt.Sprintf("SELECT `title`, `text_content`, `html_content` FROM `%s` WHERE `id` = ?", m.IssueTable)
}

func (m MysqlQueryProvider) TaskEnqueueSql() string {
	q := "INSERT INTO `%s` (`newsletter_issue_id`, `subscriber_email`) SELECT ?, `email` FROM `%s` WHERE `status` = 'confirmed'"

	return fmt.Sprintf(q, m.TaskTable, m.SubscriptionsTable)
}

// MySQL 8 requires the locking clause after LIMIT, unlike Postgres.
func (m MysqlQueryProvider) TaskClaimSql() string {
	return fmt.Sprintf("SELECT `newsletter_issue_id`, `subscriber_email` FROM `%s` LIMIT 1 FOR UPDATE SKIP LOCKED", m.TaskTable)
}

func (m MysqlQueryProvider) TaskDeleteSql() string {
	return fmt.Sprintf("DELETE FROM `%s` WHERE `newsletter_issue_id` = ? AND `subscriber_email` = ?", m.TaskTable)
}

func (m MysqlQueryProvider) GetQueueSizeSql() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM `%s`", m.TaskTable)
}

func (m MysqlQueryProvider) GetTotalSizeSql() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM `%s`", m.IssueTable)
}

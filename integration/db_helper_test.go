//go:build integration
// +build integration

package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func purgeNewsletterTables() {
	for _, table := range []string{"delivery_task", "newsletter_issue", "idempotency", "subscriptions"} {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s;", table)); err != nil {
			panic(fmt.Sprintf("an error occurred cleaning the %s table for tests: %s", table, err))
		}
	}
}

func insertSubscriber(email, status string) {
	var q string
	if cfg.DBDriver.MySQL() {
		q = "INSERT INTO subscriptions (id, email, status) VALUES (?, ?, ?);"
	} else {
		q = "INSERT INTO subscriptions (id, email, status) VALUES ($1, $2, $3);"
	}

	if _, err := db.Exec(q, uuid.New(), email, status); err != nil {
		panic(fmt.Sprintf("failed to insert subscriber for tests: %s", err))
	}
}

func insertCompletedIdempotencyRecord(userId uuid.UUID, key string, createdAt time.Time) {
	var q string
	if cfg.DBDriver.MySQL() {
		q = "INSERT INTO idempotency (user_id, idempotency_key, response_status_code, response_headers, response_body, created_at) VALUES (?, ?, 303, '[]', '', ?);"
	} else {
		q = "INSERT INTO idempotency (user_id, idempotency_key, response_status_code, response_headers, response_body, created_at) VALUES ($1, $2, 303, '[]', '', $3);"
	}

	if _, err := db.Exec(q, userId, key, createdAt); err != nil {
		panic(fmt.Sprintf("failed to insert completed idempotency record for tests: %s", err))
	}
}

func insertInFlightIdempotencyRecord(userId uuid.UUID, key string, createdAt time.Time) {
	var q string
	if cfg.DBDriver.MySQL() {
		q = "INSERT INTO idempotency (user_id, idempotency_key, created_at) VALUES (?, ?, ?);"
	} else {
		q = "INSERT INTO idempotency (user_id, idempotency_key, created_at) VALUES ($1, $2, $3);"
	}

	if _, err := db.Exec(q, userId, key, createdAt); err != nil {
		panic(fmt.Sprintf("failed to insert in-flight idempotency record for tests: %s", err))
	}
}

func countIdempotencyRecords() int {
	return countRows("SELECT COUNT(*) FROM idempotency;")
}

func countIssues() int {
	return countRows("SELECT COUNT(*) FROM newsletter_issue;")
}

func countTasks() int {
	return countRows("SELECT COUNT(*) FROM delivery_task;")
}

func countRows(q string) int {
	var count int
	if err := db.QueryRow(q).Scan(&count); err != nil {
		panic(fmt.Sprintf("failed to count rows for tests: %s", err))
	}

	return count
}

func taskEmails() []string {
	rows, err := db.Query("SELECT subscriber_email FROM delivery_task ORDER BY subscriber_email;")
	if err != nil {
		panic(fmt.Sprintf("failed to fetch delivery tasks for tests: %s", err))
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err = rows.Scan(&e); err != nil {
			panic(fmt.Sprintf("failed to scan delivery task row: %s", err))
		}
		emails = append(emails, e)
	}

	return emails
}

package outbox

import (
	"github.com/google/uuid"
)

// NewsletterIssue is created exactly once per successful publish
// command and is immutable afterwards.
type NewsletterIssue struct {
	Id          uuid.UUID
	Title       string
	TextContent string
	HtmlContent string
}

// DeliveryTask is one pending send for one subscriber. A task row is
// deleted once a dequeue attempt has been made, never updated in place.
type DeliveryTask struct {
	NewsletterIssueId uuid.UUID
	SubscriberEmail   string
}

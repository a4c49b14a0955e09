package http

import (
	"context"
	"database/sql"
	"net/http"

	"mailflock/newsletter-outbox/idempotency"
	"mailflock/newsletter-outbox/log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	// the authenticated user is resolved by an upstream gateway and
	// forwarded in this header; session handling lives outside this
	// service
	userIdHeader = "X-User-Id"
)

type commandStore interface {
	TryProcessing(ctx context.Context, userID uuid.UUID, key idempotency.Key) (*idempotency.Ticket, *idempotency.SavedResponse, error)
	SaveResponse(ctx context.Context, t *idempotency.Ticket, resp idempotency.SavedResponse) (idempotency.SavedResponse, error)
}

type issueEnqueuer interface {
	EnqueueIssue(ctx context.Context, tx *sql.Tx, title, textContent, htmlContent string) (uuid.UUID, error)
}

type publishHandler struct {
	store  commandStore
	writer issueEnqueuer
}

// NewPublishHandler builds the publish-newsletter command endpoint. It
// sequences the idempotency protocol around the outbox writer: a retry
// carrying a known key receives the saved response of the first
// execution instead of publishing a second issue.
func NewPublishHandler(store commandStore, writer issueEnqueuer) http.Handler {
	return &publishHandler{
		store:  store,
		writer: writer,
	}
}

func (h publishHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := uuid.Parse(req.Header.Get(userIdHeader))
	if err != nil {
		http.Error(w, "a valid user identity is required", http.StatusUnauthorized)
		return
	}

	key, err := idempotency.ParseKey(req.Header.Get(idempotencyKeyHeader))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = req.ParseForm(); err != nil {
		http.Error(w, "malformed form payload", http.StatusBadRequest)
		return
	}

	title := req.PostForm.Get("title")
	textContent := req.PostForm.Get("text_content")
	htmlContent := req.PostForm.Get("html_content")
	if title == "" || textContent == "" || htmlContent == "" {
		http.Error(w, "title, text_content and html_content are all required", http.StatusBadRequest)
		return
	}

	ctx := req.Context()
	ticket, saved, err := h.store.TryProcessing(ctx, userID, key)
	if err == idempotency.ErrProcessingConflict {
		http.Error(w, "a request with this idempotency key is already in progress, retry later", http.StatusConflict)
		return
	}
	if err != nil {
		log.Logger.WithError(err).Error("error claiming the idempotency key for processing")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if saved != nil {
		h.writeResponse(w, *saved)
		return
	}

	issueId, err := h.writer.EnqueueIssue(ctx, ticket.Tx(), title, textContent, htmlContent)
	if err != nil {
		log.Logger.WithError(err).Error("error enqueueing the newsletter issue, rolling the command back")
		if rbErr := ticket.Rollback(); rbErr != nil {
			log.Logger.WithError(rbErr).Error("error rolling back the command transaction")
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := idempotency.SavedResponse{
		StatusCode: http.StatusSeeOther,
		Headers:    []idempotency.HeaderPair{{Name: "Location", Value: "/admin/newsletters"}},
	}

	resp, err = h.store.SaveResponse(ctx, ticket, resp)
	if err != nil {
		log.Logger.WithError(err).Error("error saving the command response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Logger.WithFields(logrus.Fields{
		"newsletter_issue_id": issueId.String(),
		"user_id":             userID.String(),
	}).Info("newsletter issue published and deliveries enqueued")

	h.writeResponse(w, resp)
}

func (h publishHandler) writeResponse(w http.ResponseWriter, resp idempotency.SavedResponse) {
	if err := resp.Write(w); err != nil {
		log.Logger.WithError(err).Error("error writing the publish response")
	}
}

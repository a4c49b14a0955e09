package email

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"mailflock/newsletter-outbox/config"

	"github.com/pkg/errors"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client delivers one email per call through the provider's REST API.
// It implements the transport capability the delivery worker consumes;
// request timeouts are the http.Client's responsibility.
type Client struct {
	apiUrl    string
	sender    string
	authToken string
	client    httpDoer
}

func NewClient(cfg *config.Config) *Client {
	return NewClientWithHttpDoer(cfg, &http.Client{Timeout: cfg.GetEmailTimeoutDuration()})
}

func NewClientWithHttpDoer(cfg *config.Config, doer httpDoer) *Client {
	return &Client{
		apiUrl:    cfg.EmailApiUrl,
		sender:    cfg.EmailSender,
		authToken: cfg.EmailApiToken,
		client:    doer,
	}
}

type sendEmailRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HtmlBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload, err := json.Marshal(sendEmailRequest{
		From:     c.sender,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return errors.Wrap(err, "email: error encoding the send request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "email: error building the send request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Server-Token", c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "email: error sending to %s", to)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("email: provider responded with status %d for recipient %s", resp.StatusCode, to)
	}

	return nil
}

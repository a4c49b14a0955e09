package test

import (
	"context"
	"errors"
	"sync"
)

type SentEmail struct {
	To       string
	Subject  string
	HtmlBody string
	TextBody string
}

type MockSender struct {
	sync.Mutex
	sent         []SentEmail
	callCount    int
	returnErrors bool
}

func NewMockSender() *MockSender {
	return &MockSender{
		sent: []SentEmail{},
	}
}

func (m *MockSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	m.Lock()
	defer m.Unlock()
	m.callCount++

	if m.returnErrors {
		return errors.New("oops")
	}

	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, HtmlBody: htmlBody, TextBody: textBody})

	return nil
}

func (m *MockSender) SentEmails() []SentEmail {
	m.Lock()
	defer m.Unlock()

	cpy := make([]SentEmail, len(m.sent))
	copy(cpy, m.sent)

	return cpy
}

func (m *MockSender) SendCallCount() int {
	m.Lock()
	defer m.Unlock()
	return m.callCount
}

func (m *MockSender) ReturnErrors() {
	m.Lock()
	defer m.Unlock()
	m.returnErrors = true
}

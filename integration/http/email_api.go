//go:build integration
// +build integration

package http

import (
	"encoding/json"
	"net/http"
	"sync"
)

type SentEmail struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HtmlBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

type Received map[string]bool

var (
	mu    sync.Mutex
	sent  []SentEmail
	Recvd Received
)

func init() {
	Recvd = map[string]bool{}
}

// GetHttpTestHandlerFunc returns a handler that doubles as the email
// provider API and the sidecar proxy admin endpoint during tests.
func GetHttpTestHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/quitquitquit":
			handleQuit(w, r)
			return
		default:
			handleSendEmail(w, r)
			return
		}
	}
}

func SentEmails() []SentEmail {
	mu.Lock()
	defer mu.Unlock()

	cp := make([]SentEmail, len(sent))
	copy(cp, sent)

	return cp
}

func CountSentTo(recipient string) int {
	var count int
	for _, e := range SentEmails() {
		if e.To == recipient {
			count++
		}
	}

	return count
}

func Reset() {
	mu.Lock()
	defer mu.Unlock()

	sent = nil
	Recvd = Received{}
}

func handleSendEmail(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Server-Token") == "" {
		w.WriteHeader(401)
		return
	}

	var e SentEmail
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		w.WriteHeader(400)
		return
	}

	mu.Lock()
	sent = append(sent, e)
	mu.Unlock()

	w.WriteHeader(200)
}

func handleQuit(w http.ResponseWriter, r *http.Request) {
	mu.Lock()
	Recvd["/quitquitquit"] = true
	mu.Unlock()

	w.WriteHeader(200)
}

package idempotency

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// HeaderPair preserves the order and duplicates of the original
// response headers, which http.Header cannot.
type HeaderPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SavedResponse is the HTTP response captured at the end of the first
// successful execution of a command. It is replayed byte-for-byte to
// every retry carrying the same idempotency key.
type SavedResponse struct {
	StatusCode int
	Headers    []HeaderPair
	Body       []byte
}

func (r SavedResponse) Write(w http.ResponseWriter) error {
	for _, h := range r.Headers {
		w.Header().Add(h.Name, h.Value)
	}
	w.WriteHeader(r.StatusCode)

	_, err := w.Write(r.Body)
	if err != nil {
		return errors.Wrap(err, "idempotency: error writing saved response body")
	}

	return nil
}

func encodeHeaders(headers []HeaderPair) ([]byte, error) {
	if headers == nil {
		headers = []HeaderPair{}
	}

	enc, err := json.Marshal(headers)
	if err != nil {
		return nil, errors.Wrap(err, "idempotency: error encoding response headers")
	}

	return enc, nil
}

func decodeHeaders(enc []byte) ([]HeaderPair, error) {
	var headers []HeaderPair
	if err := json.Unmarshal(enc, &headers); err != nil {
		return nil, errors.Wrap(err, "idempotency: error decoding response headers")
	}

	return headers, nil
}

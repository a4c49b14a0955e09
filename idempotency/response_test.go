package idempotency

import (
	"net/http/httptest"
	"testing"

	"github.com/go-test/deep"
)

func TestHeaderCodecPreservesOrderAndDuplicates(t *testing.T) {
	headers := []HeaderPair{
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Set-Cookie", Value: "b=2"},
	}

	enc, err := encodeHeaders(headers)
	if err != nil {
		t.Fatalf("unexpected error encoding headers: %s", err)
	}

	dec, err := decodeHeaders(enc)
	if err != nil {
		t.Fatalf("unexpected error decoding headers: %s", err)
	}

	if diff := deep.Equal(headers, dec); diff != nil {
		t.Error(diff)
	}
}

func TestEncodeHeadersWithNilSlice(t *testing.T) {
	enc, err := encodeHeaders(nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if string(enc) != "[]" {
		t.Errorf("expected an empty JSON array, got %s", enc)
	}
}

func TestDecodeHeadersWithInvalidPayload(t *testing.T) {
	if _, err := decodeHeaders([]byte("not json")); err == nil {
		t.Error("expected an error but got nil")
	}
}

func TestSavedResponse_Write(t *testing.T) {
	resp := SavedResponse{
		StatusCode: 303,
		Headers: []HeaderPair{
			{Name: "Location", Value: "/admin/newsletters"},
			{Name: "Content-Type", Value: "application/json"},
		},
		Body: []byte(`{"ok":true}`),
	}

	rec := httptest.NewRecorder()
	if err := resp.Write(rec); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if rec.Code != 303 {
		t.Errorf("expected status 303, got %d", rec.Code)
	}

	if got := rec.Header().Get("Location"); got != "/admin/newsletters" {
		t.Errorf("expected Location header to be replayed, got %q", got)
	}

	if rec.Body.String() != `{"ok":true}` {
		t.Errorf("expected the body to be replayed byte-for-byte, got %q", rec.Body.String())
	}
}

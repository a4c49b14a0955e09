package idempotency

import "github.com/pkg/errors"

const maxKeyLength = 50

var (
	ErrKeyEmpty   = errors.New("the idempotency key cannot be empty")
	ErrKeyTooLong = errors.Errorf("the idempotency key must not exceed %d characters", maxKeyLength)
)

// Key is a validated, client-supplied deduplication token. It is scoped
// by the submitting user, so the same token from two different users
// never collides. Retries must match byte-for-byte; no normalization
// is applied.
type Key struct {
	value string
}

func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, ErrKeyEmpty
	}

	if len(raw) > maxKeyLength {
		return Key{}, ErrKeyTooLong
	}

	return Key{value: raw}, nil
}

func (k Key) String() string {
	return k.value
}

package email

import (
	"net/mail"

	"github.com/pkg/errors"
)

// ParseAddress validates a stored subscriber address. Addresses are
// stored bare, so display-name forms like "Jane <jane@example.com>"
// are rejected along with anything net/mail cannot parse.
func ParseAddress(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", errors.Errorf("%q is not a valid email address: %s", raw, err)
	}

	if addr.Address != raw {
		return "", errors.Errorf("%q is not a bare email address", raw)
	}

	return addr.Address, nil
}

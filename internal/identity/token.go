package identity

import (
	"errors"
	"strings"

	accountdomain "github.com/trash2cash/platform/internal/account/domain"
)

// Kind discriminates the QR token formats accepted at the bin.
type Kind int

const (
	// KindPlainCNIC is a card number on its own, bare ("12345-1234567-1")
	// or keyed ("CNIC:12345-1234567-1").
	KindPlainCNIC Kind = iota + 1
	// KindKeyed carries card credentials: "CNIC:...|PASS:...".
	KindKeyed
	// KindUser is the app-generated payload: "USER:..|CNIC:..|USERNAME:..".
	KindUser
)

// Token is a parsed QR payload. Only the fields for its Kind are set.
type Token struct {
	Kind     Kind
	CNIC     string
	Password string
	UserID   string
	Username string
}

var ErrMalformedToken = errors.New("malformed_token")

// Parse classifies a raw QR payload without touching storage.
func Parse(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, ErrMalformedToken
	}

	if accountdomain.ValidCNIC(raw) {
		return Token{Kind: KindPlainCNIC, CNIC: raw}, nil
	}

	if !strings.Contains(raw, ":") {
		return Token{}, ErrMalformedToken
	}

	fields := map[string]string{}
	for _, part := range strings.Split(raw, "|") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return Token{}, ErrMalformedToken
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			return Token{}, ErrMalformedToken
		}
		fields[key] = value
	}

	if userID, ok := fields["USER"]; ok {
		cnic, ok := fields["CNIC"]
		if !ok {
			// A bare user id proves nothing; the card number is the
			// verification half of the pair.
			return Token{}, ErrMalformedToken
		}
		return Token{
			Kind:     KindUser,
			UserID:   userID,
			CNIC:     cnic,
			Username: fields["USERNAME"],
		}, nil
	}

	cnic, hasCNIC := fields["CNIC"]
	pass, hasPass := fields["PASS"]
	switch {
	case hasCNIC && hasPass:
		return Token{Kind: KindKeyed, CNIC: cnic, Password: pass}, nil
	case hasCNIC:
		// The mobile app also emits the card number keyed on its own; it
		// resolves like a bare scan.
		return Token{Kind: KindPlainCNIC, CNIC: cnic}, nil
	}

	return Token{}, ErrMalformedToken
}

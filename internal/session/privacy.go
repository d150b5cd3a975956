package session

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// RedactEmail masks an address for log output. The local part is replaced by
// a short hash so repeated lines about the same user still correlate.
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return shortHash(email)
	}
	return shortHash(email[:at]) + email[at:]
}

// String implements fmt.Stringer with the email redacted, so identities can
// be passed straight to log.Printf.
func (u UserIdentity) String() string {
	return fmt.Sprintf("identity(%s)", RedactEmail(u.Email))
}

// shortHash returns a truncated SHA-256 hex digest for an opaque identifier.
func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:6])
}

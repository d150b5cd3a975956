package firebase

import (
	"errors"
	"fmt"

	"github.com/freelance-hub/jobhub/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// idTokenClaims are the Firebase ID token claims the client reads. The token
// is not verified here: it came straight from the provider over TLS and the
// first-party server does its own checks.
type idTokenClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

func decodeIDToken(raw string) (*idTokenClaims, error) {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	return &claims, nil
}

// fill copies claims into empty principal fields.
func (c *idTokenClaims) fill(p *identity.Principal) {
	if p.UID == "" {
		p.UID = c.UserID
		if p.UID == "" {
			p.UID = c.Subject
		}
	}
	if p.Email == "" {
		p.Email = c.Email
	}
	if p.DisplayName == "" {
		p.DisplayName = c.Name
	}
	if p.PhotoURL == "" {
		p.PhotoURL = c.Picture
	}
}

func principalFromIDToken(raw string) (*identity.Principal, error) {
	claims, err := decodeIDToken(raw)
	if err != nil {
		return nil, err
	}
	p := &identity.Principal{}
	claims.fill(p)
	if p.Email == "" {
		return nil, errors.New("id token carries no email")
	}
	return p, nil
}

package api

import (
	"context"
	"net/http"
	"strings"
)

// SessionClient talks to the first-party session endpoints. It shares the
// cookie jar with Client but has no invalidation handler: a rejected /jwt or
// /logout must not trigger another sign-out.
type SessionClient struct {
	baseURL string
	client  *http.Client
}

func NewSessionClient(baseURL string, jar http.CookieJar) *SessionClient {
	return &SessionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar},
	}
}

// IssueToken sends POST /jwt {emailAddress}. The server answers with a
// session cookie stored in the jar.
func (s *SessionClient) IssueToken(ctx context.Context, email string) error {
	return send(ctx, s.client, s.baseURL, http.MethodPost, "/jwt", map[string]string{"emailAddress": email}, nil)
}

// Revoke sends POST /logout.
func (s *SessionClient) Revoke(ctx context.Context) error {
	return send(ctx, s.client, s.baseURL, http.MethodPost, "/logout", struct{}{}, nil)
}

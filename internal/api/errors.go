package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionInvalidated is wrapped by errors for 401 and 403 responses.
var ErrSessionInvalidated = errors.New("session invalidated")

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps 401 and 403 to ErrSessionInvalidated.
func (e *StatusError) Unwrap() error {
	if isSessionRejection(e.Code) {
		return ErrSessionInvalidated
	}
	return nil
}

func isSessionRejection(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

package firebase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/freelance-hub/jobhub/internal/identity"
)

type operation int

const (
	opRegister operation = iota
	opSignIn
	opFederated
	opUpdate
	opRefresh
)

// APIError is an error payload returned by the Identity Toolkit or Secure
// Token APIs. Reason is the leading code, e.g. "EMAIL_EXISTS".
type APIError struct {
	Status  int
	Reason  string
	Message string

	kind error
}

func (e *APIError) Error() string {
	if e.Message != "" && e.Message != e.Reason {
		return fmt.Sprintf("firebase %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("firebase %d: %s", e.Status, e.Reason)
}

func (e *APIError) Unwrap() error { return e.kind }

func parseAPIError(status int, body []byte) error {
	var payload struct {
		Error json.RawMessage `json:"error"`
		// Secure Token errors may use OAuth-style fields.
		ErrorDescription string `json:"error_description"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	var nested struct {
		Message string `json:"message"`
	}
	var flat string
	switch {
	case json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "":
		apiErr.Message = nested.Message
	case json.Unmarshal(payload.Error, &flat) == nil:
		apiErr.Message = flat
		if payload.ErrorDescription != "" {
			apiErr.Message = payload.ErrorDescription
		}
	}
	apiErr.Reason = reasonOf(apiErr.Message)
	return apiErr
}

// reasonOf extracts "WEAK_PASSWORD" from "WEAK_PASSWORD : Password should be ...".
func reasonOf(msg string) string {
	reason, _, _ := strings.Cut(msg, ":")
	return strings.ToUpper(strings.TrimSpace(reason))
}

// mapError attaches the identity error taxonomy to a provider error.
func mapError(err error, op operation) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Reason == "INVALID_EMAIL",
		apiErr.Reason == "MISSING_EMAIL",
		apiErr.Reason == "MISSING_PASSWORD",
		apiErr.Reason == "EMAIL_EXISTS",
		strings.HasPrefix(apiErr.Reason, "WEAK_PASSWORD"),
		apiErr.Reason == "PASSWORD_DOES_NOT_MEET_REQUIREMENTS":
		apiErr.kind = identity.ErrInvalidCredentialsFormat

	case apiErr.Reason == "INVALID_ID_TOKEN",
		apiErr.Reason == "TOKEN_EXPIRED",
		apiErr.Reason == "USER_NOT_FOUND",
		apiErr.Reason == "INVALID_REFRESH_TOKEN",
		apiErr.Reason == "INVALID_GRANT_TYPE",
		apiErr.Reason == "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		if op == opSignIn || op == opFederated || op == opRegister {
			apiErr.kind = identity.ErrAuthenticationFailed
		} else {
			apiErr.kind = identity.ErrNotAuthenticated
		}

	case op == opSignIn, op == opFederated, op == opRegister:
		// EMAIL_NOT_FOUND, INVALID_PASSWORD, INVALID_LOGIN_CREDENTIALS,
		// USER_DISABLED, INVALID_IDP_RESPONSE and friends.
		apiErr.kind = identity.ErrAuthenticationFailed

	case op == opRefresh && apiErr.Reason == "USER_DISABLED":
		apiErr.kind = identity.ErrNotAuthenticated
	}
	return apiErr
}

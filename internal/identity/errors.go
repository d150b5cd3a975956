package identity

import "errors"

// ErrAuthenticationFailed is returned for bad credentials.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrAuthenticationCancelled is returned when the user aborts an interactive flow.
var ErrAuthenticationCancelled = errors.New("authentication cancelled")

// ErrInvalidCredentialsFormat is returned when credentials are rejected on
// format or policy grounds, locally or by the provider.
var ErrInvalidCredentialsFormat = errors.New("invalid credentials format")

// ErrNotAuthenticated is returned by operations that need a signed-in principal.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrFederationUnavailable is returned when no federated flow is configured.
var ErrFederationUnavailable = errors.New("federated sign-in not configured")

// Package google runs the Google sign-in flow for a terminal client: OAuth2
// authorization code with PKCE, redirected to a loopback listener, and an
// OIDC-verified ID token as the result.
package google

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/freelance-hub/jobhub/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	providerID    = "google.com"
	defaultIssuer = "https://accounts.google.com"
	callbackPath  = "/callback"
)

// Config holds Google OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	Issuer       string

	// ListenAddr is the loopback address for the redirect. Defaults to an
	// ephemeral port on 127.0.0.1.
	ListenAddr string

	// OpenURL presents the consent page URL to the user.
	OpenURL func(authURL string)

	HTTPClient *http.Client
}

// Federation implements firebase.Federation for Google accounts.
type Federation struct {
	cfg Config

	mu       sync.Mutex
	provider *oidc.Provider
	keySet   oidc.KeySet // overrides the discovered JWKS when set
}

// New creates a Federation. Discovery happens on the first Authenticate.
func New(cfg Config) *Federation {
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	return &Federation{cfg: cfg}
}

func (f *Federation) ProviderID() string { return providerID }

type callbackResult struct {
	code string
	err  error
}

// Authenticate blocks until the browser hits the loopback callback or ctx is
// done, and returns the verified Google ID token.
func (f *Federation) Authenticate(ctx context.Context) (string, error) {
	if f.cfg.OpenURL == nil {
		return "", identity.ErrFederationUnavailable
	}
	ctx = f.clientContext(ctx)

	provider, err := f.discover(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrAuthenticationFailed, err)
	}

	ln, err := net.Listen("tcp", f.cfg.ListenAddr)
	if err != nil {
		return "", fmt.Errorf("%w: listen for callback: %v", identity.ErrAuthenticationFailed, err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		RedirectURL:  "http://" + ln.Addr().String() + callbackPath,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackRouter(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("google: callback server: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.cfg.OpenURL(oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)))

	var res callbackResult
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", identity.ErrAuthenticationCancelled, ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return "", res.err
	}

	token, err := oauthCfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", identity.ErrAuthenticationFailed, err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("%w: google did not return id_token", identity.ErrAuthenticationFailed)
	}

	idToken, err := f.verifier(provider).Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: id_token verification: %v", identity.ErrAuthenticationFailed, err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		return "", fmt.Errorf("%w: id_token carries no email", identity.ErrAuthenticationFailed)
	}

	log.Printf("google: verified id token for %s", idToken.Subject)
	return rawIDToken, nil
}

func (f *Federation) discover(ctx context.Context) (*oidc.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.provider != nil {
		return f.provider, nil
	}
	provider, err := oidc.NewProvider(ctx, f.cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", f.cfg.Issuer, err)
	}
	f.provider = provider
	return provider, nil
}

func (f *Federation) verifier(provider *oidc.Provider) *oidc.IDTokenVerifier {
	cfg := &oidc.Config{ClientID: f.cfg.ClientID}
	if f.keySet != nil {
		return oidc.NewVerifier(f.cfg.Issuer, f.keySet, cfg)
	}
	return provider.Verifier(cfg)
}

func (f *Federation) clientContext(ctx context.Context) context.Context {
	if f.cfg.HTTPClient == nil {
		return ctx
	}
	ctx = oidc.ClientContext(ctx, f.cfg.HTTPClient)
	return context.WithValue(ctx, oauth2.HTTPClient, f.cfg.HTTPClient)
}

// callbackRouter accepts exactly one redirect and reports it on results.
func callbackRouter(state string, results chan<- callbackResult) http.Handler {
	var once sync.Once
	report := func(res callbackResult) {
		once.Do(func() { results <- res })
	}

	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			report(callbackResult{err: fmt.Errorf("%w: state mismatch", identity.ErrAuthenticationFailed)})
		case q.Get("error") == "access_denied":
			http.Error(w, "sign-in cancelled, you can close this tab", http.StatusOK)
			report(callbackResult{err: identity.ErrAuthenticationCancelled})
		case q.Get("error") != "":
			http.Error(w, "sign-in failed: "+q.Get("error"), http.StatusBadRequest)
			report(callbackResult{err: fmt.Errorf("%w: %s", identity.ErrAuthenticationFailed, q.Get("error"))})
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			report(callbackResult{err: fmt.Errorf("%w: missing code", identity.ErrAuthenticationFailed)})
		default:
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Signed in. You can return to the terminal.\n"))
			report(callbackResult{code: q.Get("code")})
		}
	})
	return r
}

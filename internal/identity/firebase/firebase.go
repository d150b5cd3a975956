// Package firebase implements identity.Provider over the Firebase Identity
// Toolkit and Secure Token REST APIs.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/freelance-hub/jobhub/internal/identity"
)

const (
	refreshLead     = 5 * time.Minute
	minRefreshDelay = 30 * time.Second
	retryDelay      = time.Minute
)

// Federation obtains a third-party ID token that Firebase can exchange via
// accounts:signInWithIdp.
type Federation interface {
	ProviderID() string
	Authenticate(ctx context.Context) (idToken string, err error)
}

// Config configures a Provider.
type Config struct {
	APIKey          string
	Endpoint        string // e.g. https://identitytoolkit.googleapis.com
	TokenEndpoint   string // e.g. https://securetoken.googleapis.com
	CredentialsFile string // empty disables persistence
	HTTPClient      *http.Client
	Federation      Federation
}

// Provider is a Firebase-backed identity.Provider.
type Provider struct {
	cfg   Config
	http  *http.Client
	creds *credentialFile

	mu        sync.Mutex
	tokens    *tokenSet
	principal *identity.Principal
	restored  bool
	listeners map[int]identity.StateListener
	nextID    int
	refresh   *time.Timer
	closed    bool

	restoreOnce sync.Once
}

type tokenSet struct {
	IDToken      string
	RefreshToken string
	Expiry       time.Time
}

// New creates a provider. Nothing is fetched until the first Subscribe.
func New(cfg Config) *Provider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Provider{
		cfg:       cfg,
		http:      client,
		creds:     &credentialFile{path: cfg.CredentialsFile},
		listeners: make(map[int]identity.StateListener),
	}
}

// Subscribe registers fn. The first subscriber triggers restoration of a
// persisted session; later subscribers get the known state right away.
func (p *Provider) Subscribe(fn identity.StateListener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	restored := p.restored
	current := clonePrincipal(p.principal)
	p.mu.Unlock()

	p.restoreOnce.Do(func() {
		go p.restore(context.Background())
	})
	// While restoration is pending it reports to every listener itself.
	if restored {
		go fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Current returns the signed-in principal, if any.
func (p *Provider) Current() *identity.Principal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clonePrincipal(p.principal)
}

// Close stops the refresh timer. Listeners stay registered but will not be
// called by background refreshes anymore.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.refresh != nil {
		p.refresh.Stop()
		p.refresh = nil
	}
}

func (p *Provider) restore(ctx context.Context) {
	stored, err := p.creds.Load()
	if err != nil {
		log.Printf("firebase: load credentials: %v", err)
	}
	if stored == nil || stored.RefreshToken == "" {
		p.restoreEmpty()
		return
	}

	tokens, err := p.exchangeRefreshToken(ctx, stored.RefreshToken)
	if err != nil {
		log.Printf("firebase: restore session: %v", err)
		if errors.Is(err, identity.ErrNotAuthenticated) {
			_ = p.creds.Remove()
		}
		p.restoreEmpty()
		return
	}

	principal, err := p.lookup(ctx, tokens.IDToken)
	if err != nil {
		log.Printf("firebase: lookup after restore: %v", err)
		principal, err = principalFromIDToken(tokens.IDToken)
		if err != nil {
			p.restoreEmpty()
			return
		}
	}
	p.establish(tokens, principal)
}

// restoreEmpty ends restoration without a persisted session. A sign-in that
// raced the restore wins.
func (p *Provider) restoreEmpty() {
	p.mu.Lock()
	p.restored = true
	current := clonePrincipal(p.principal)
	p.mu.Unlock()
	p.notify(current)
}

func (p *Provider) Register(ctx context.Context, email, password string) (*identity.Principal, error) {
	var out authResponse
	err := p.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, mapError(err, opRegister)
	}
	return p.establishFromResponse(out)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Principal, error) {
	var out authResponse
	err := p.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, mapError(err, opSignIn)
	}
	return p.establishFromResponse(out)
}

func (p *Provider) FederatedSignIn(ctx context.Context) (*identity.Principal, error) {
	if p.cfg.Federation == nil {
		return nil, identity.ErrFederationUnavailable
	}
	idToken, err := p.cfg.Federation.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	postBody := url.Values{}
	postBody.Set("id_token", idToken)
	postBody.Set("providerId", p.cfg.Federation.ProviderID())

	var out authResponse
	err = p.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}, &out)
	if err != nil {
		return nil, mapError(err, opFederated)
	}
	return p.establishFromResponse(out)
}

func (p *Provider) UpdateProfile(ctx context.Context, displayName, photoURL string) (*identity.Principal, error) {
	p.mu.Lock()
	tokens := p.tokens
	p.mu.Unlock()
	if tokens == nil {
		return nil, identity.ErrNotAuthenticated
	}

	body := map[string]any{
		"idToken":           tokens.IDToken,
		"returnSecureToken": true,
	}
	if displayName != "" {
		body["displayName"] = displayName
	}
	if photoURL != "" {
		body["photoUrl"] = photoURL
	}

	var out authResponse
	if err := p.call(ctx, "accounts:update", body, &out); err != nil {
		return nil, mapError(err, opUpdate)
	}
	if out.IDToken == "" {
		// The response may omit fresh tokens; keep the current ones.
		out.IDToken = tokens.IDToken
		out.RefreshToken = tokens.RefreshToken
		out.ExpiresIn = strconv.Itoa(int(time.Until(tokens.Expiry).Seconds()))
	}
	return p.establishFromResponse(out)
}

// SignOut forgets the tokens locally. Firebase has no server-side sign-out
// for client sessions.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.tokens = nil
	p.principal = nil
	if p.refresh != nil {
		p.refresh.Stop()
		p.refresh = nil
	}
	p.mu.Unlock()

	err := p.creds.Remove()
	p.notify(nil)
	if err != nil {
		return fmt.Errorf("firebase: remove credentials: %w", err)
	}
	return nil
}

func (p *Provider) establishFromResponse(out authResponse) (*identity.Principal, error) {
	if out.IDToken == "" {
		return nil, fmt.Errorf("%w: provider returned no token", identity.ErrAuthenticationFailed)
	}
	principal := out.principal()
	if claims, err := decodeIDToken(out.IDToken); err == nil {
		claims.fill(principal)
	}
	tokens := &tokenSet{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		Expiry:       time.Now().Add(parseExpiresIn(out.ExpiresIn)),
	}
	p.establish(tokens, principal)
	return clonePrincipal(principal), nil
}

// establish stores tokens, persists the refresh token, schedules the next
// refresh and reports the principal to listeners.
func (p *Provider) establish(tokens *tokenSet, principal *identity.Principal) {
	p.mu.Lock()
	p.tokens = tokens
	p.principal = clonePrincipal(principal)
	p.restored = true
	p.scheduleRefreshLocked(time.Until(tokens.Expiry) - refreshLead)
	p.mu.Unlock()

	if err := p.creds.Save(storedCredentials{RefreshToken: tokens.RefreshToken, Email: principal.Email}); err != nil {
		log.Printf("firebase: save credentials: %v", err)
	}
	p.notify(principal)
}

// scheduleRefreshLocked must be called with mu held.
func (p *Provider) scheduleRefreshLocked(delay time.Duration) {
	if p.closed || p.tokens == nil || p.tokens.RefreshToken == "" {
		return
	}
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}
	if p.refresh != nil {
		p.refresh.Stop()
	}
	p.refresh = time.AfterFunc(delay, p.refreshNow)
}

func (p *Provider) refreshNow() {
	p.mu.Lock()
	tokens := p.tokens
	p.mu.Unlock()
	if tokens == nil {
		return
	}

	next, err := p.exchangeRefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrNotAuthenticated) {
			log.Printf("firebase: refresh rejected, signing out: %v", err)
			_ = p.SignOut(context.Background())
			return
		}
		log.Printf("firebase: refresh failed, retrying: %v", err)
		p.mu.Lock()
		p.scheduleRefreshLocked(retryDelay)
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	principal := clonePrincipal(p.principal)
	p.mu.Unlock()
	if principal == nil {
		return // signed out meanwhile
	}
	if claims, err := decodeIDToken(next.IDToken); err == nil {
		claims.fill(principal)
	}
	p.establish(next, principal)
}

func (p *Provider) notify(principal *identity.Principal) {
	p.mu.Lock()
	listeners := make([]identity.StateListener, 0, len(p.listeners))
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(clonePrincipal(principal))
	}
}

func (p *Provider) lookup(ctx context.Context, idToken string) (*identity.Principal, error) {
	var out struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
			PhotoURL    string `json:"photoUrl"`
		} `json:"users"`
	}
	if err := p.call(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &out); err != nil {
		return nil, mapError(err, opUpdate)
	}
	if len(out.Users) == 0 {
		return nil, identity.ErrNotAuthenticated
	}
	u := out.Users[0]
	return &identity.Principal{UID: u.LocalID, Email: u.Email, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}, nil
}

func (p *Provider) exchangeRefreshToken(ctx context.Context, refreshToken string) (*tokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := strings.TrimRight(p.cfg.TokenEndpoint, "/") + "/v1/token?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := p.do(req, &out); err != nil {
		return nil, mapError(err, opRefresh)
	}
	return &tokenSet{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		Expiry:       time.Now().Add(parseExpiresIn(out.ExpiresIn)),
	}, nil
}

func (p *Provider) call(ctx context.Context, method string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(p.cfg.Endpoint, "/") + "/v1/" + method + "?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *Provider) do(req *http.Request, out any) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r authResponse) principal() *identity.Principal {
	return &identity.Principal{
		UID:         r.LocalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
	}
}

func parseExpiresIn(s string) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

func clonePrincipal(p *identity.Principal) *identity.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

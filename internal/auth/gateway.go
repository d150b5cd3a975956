// Package auth owns the session lifecycle. The Gateway is the only writer of
// the session store: it mirrors the identity provider's principal into the
// store, exchanges it for a first-party session token, and tears both down on
// sign-out.
package auth

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/freelance-hub/jobhub/internal/identity"
	"github.com/freelance-hub/jobhub/internal/session"
)

// DefaultResolveTimeout is used when no watchdog interval is configured.
const DefaultResolveTimeout = 5 * time.Second

// SessionEndpoints is the first-party server's session API.
type SessionEndpoints interface {
	// IssueToken asks the server for a session token keyed by email.
	IssueToken(ctx context.Context, email string) error
	// Revoke ends the server-side session.
	Revoke(ctx context.Context) error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithResolveTimeout sets how long Start waits for the provider's first
// report before clearing Resolving on its own.
func WithResolveTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// Gateway wraps an identity provider and the session endpoints.
type Gateway struct {
	provider  identity.Provider
	endpoints SessionEndpoints
	store     *session.Store
	timeout   time.Duration

	mu          sync.Mutex
	cycle       uint64 // bumped by every register/sign-in attempt
	observed    bool   // provider has reported at least once
	watchdog    *time.Timer
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	closed      bool
}

func New(provider identity.Provider, endpoints SessionEndpoints, store *session.Store, opts ...Option) *Gateway {
	g := &Gateway{
		provider:  provider,
		endpoints: endpoints,
		store:     store,
		timeout:   DefaultResolveTimeout,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start subscribes to the provider and arms the startup watchdog. Token
// exchanges run under ctx until Close.
func (g *Gateway) Start(ctx context.Context) {
	g.mu.Lock()
	if g.started || g.closed {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.ctx, g.cancel = context.WithCancel(ctx)
	cycle := g.cycle
	g.watchdog = time.AfterFunc(g.timeout, func() { g.watchdogFired(cycle) })
	g.mu.Unlock()

	// Providers may report synchronously, so no lock is held here.
	unsub := g.provider.Subscribe(g.onPrincipal)

	g.mu.Lock()
	closed := g.closed
	if !closed {
		g.unsubscribe = unsub
	}
	g.mu.Unlock()
	if closed {
		unsub()
	}
}

// Close unsubscribes from the provider, stops the watchdog and cancels
// in-flight token exchanges.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	if g.watchdog != nil {
		g.watchdog.Stop()
		g.watchdog = nil
	}
	if g.cancel != nil {
		g.cancel()
	}
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (g *Gateway) watchdogFired(cycle uint64) {
	g.mu.Lock()
	fire := !g.observed && !g.closed && g.cycle == cycle
	g.watchdog = nil
	g.mu.Unlock()
	if fire {
		log.Printf("auth: provider silent for %s, giving up on session restore", g.timeout)
		g.store.SetResolving(false)
	}
}

// onPrincipal handles every provider state report: one identity write, then
// a token exchange that settles the current cycle.
func (g *Gateway) onPrincipal(p *identity.Principal) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.observed = true
	if g.watchdog != nil {
		g.watchdog.Stop()
		g.watchdog = nil
	}
	cycle := g.cycle
	ctx := g.ctx
	g.mu.Unlock()

	g.store.SetIdentity(toIdentity(p))
	if p == nil {
		g.settle(cycle)
		return
	}

	go func(email string) {
		if err := g.endpoints.IssueToken(ctx, email); err != nil {
			log.Printf("auth: issue session token for %s: %v", session.RedactEmail(email), err)
		}
		g.settle(cycle)
	}(p.Email)
}

// beginCycle starts a new resolving cycle and returns its number.
func (g *Gateway) beginCycle() uint64 {
	g.mu.Lock()
	g.cycle++
	cycle := g.cycle
	g.mu.Unlock()
	g.store.SetResolving(true)
	return cycle
}

// settle clears Resolving unless a newer cycle has started.
func (g *Gateway) settle(cycle uint64) {
	g.mu.Lock()
	current := g.cycle == cycle && !g.closed
	g.mu.Unlock()
	if current {
		g.store.SetResolving(false)
	}
}

// Register validates the credentials locally, then creates the account.
// Policy failures return identity.ErrInvalidCredentialsFormat without
// contacting the provider.
func (g *Gateway) Register(ctx context.Context, email, password string) (session.UserIdentity, error) {
	if err := (identity.Credentials{Email: email, Password: password}).ValidateRegistration(); err != nil {
		return session.UserIdentity{}, err
	}
	return g.authenticate(ctx, "register", func() (*identity.Principal, error) {
		return g.provider.Register(ctx, email, password)
	})
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (session.UserIdentity, error) {
	if err := (identity.Credentials{Email: email, Password: password}).ValidateSignIn(); err != nil {
		return session.UserIdentity{}, err
	}
	return g.authenticate(ctx, "sign in", func() (*identity.Principal, error) {
		return g.provider.SignIn(ctx, email, password)
	})
}

// FederatedSignIn runs the provider's interactive flow.
func (g *Gateway) FederatedSignIn(ctx context.Context) (session.UserIdentity, error) {
	return g.authenticate(ctx, "federated sign in", func() (*identity.Principal, error) {
		return g.provider.FederatedSignIn(ctx)
	})
}

// authenticate runs fn in a fresh resolving cycle. The provider's state
// callback performs the identity write; a failure settles the cycle here.
func (g *Gateway) authenticate(ctx context.Context, op string, fn func() (*identity.Principal, error)) (session.UserIdentity, error) {
	cycle := g.beginCycle()
	p, err := fn()
	if err != nil {
		g.settle(cycle)
		log.Printf("auth: %s: %v", op, err)
		return session.UserIdentity{}, fmt.Errorf("%s: %w", op, err)
	}
	return *toIdentity(p), nil
}

// UpdateProfile changes the display name and avatar of the signed-in user.
// The provider reports the updated principal through its state callback.
func (g *Gateway) UpdateProfile(ctx context.Context, displayName, avatarURL string) error {
	if _, err := g.provider.UpdateProfile(ctx, displayName, avatarURL); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SignOut revokes the server session (best effort), then the provider
// session. The local identity is cleared either way; the provider's error is
// returned.
func (g *Gateway) SignOut(ctx context.Context) error {
	if err := g.endpoints.Revoke(ctx); err != nil {
		log.Printf("auth: revoke server session: %v", err)
	}
	err := g.provider.SignOut(ctx)
	g.store.SetIdentity(nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func toIdentity(p *identity.Principal) *session.UserIdentity {
	if p == nil {
		return nil
	}
	return &session.UserIdentity{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.PhotoURL,
	}
}

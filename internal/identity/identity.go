// Package identity defines the contract the client expects from an external
// identity provider. Implementations report principals only; they never
// touch the session store or the first-party session endpoints.
package identity

import "context"

// Principal is the authenticated identity reported by a provider.
type Principal struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// StateListener is called whenever the provider's principal changes:
// sign-in, sign-out, token refresh or profile update. A nil principal means
// nobody is signed in.
type StateListener func(p *Principal)

// Provider is the capability interface over the external identity service.
type Provider interface {
	// Register creates an account and signs it in.
	Register(ctx context.Context, email, password string) (*Principal, error)

	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, email, password string) (*Principal, error)

	// FederatedSignIn runs an interactive third-party flow.
	FederatedSignIn(ctx context.Context) (*Principal, error)

	// UpdateProfile changes the current principal's display name and photo.
	UpdateProfile(ctx context.Context, displayName, photoURL string) (*Principal, error)

	// SignOut ends the provider session.
	SignOut(ctx context.Context) error

	// Subscribe registers fn for state changes. Like most providers, the
	// current state is reported once after subscribing, as soon as it is
	// known.
	Subscribe(fn StateListener) (unsubscribe func())
}

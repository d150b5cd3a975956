package session

// UserIdentity is an immutable snapshot of the signed-in principal. Empty
// strings mean the provider has no value for the field.
type UserIdentity struct {
	Email       string
	DisplayName string
	AvatarURL   string
}

// Name returns the display name, falling back to the email address.
func (u UserIdentity) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Session is the local view of whether, and as whom, the user is signed in.
type Session struct {
	Identity  *UserIdentity
	Resolving bool
}

// Authenticated reports whether a principal is present.
func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// Email returns the principal's email or "" when signed out.
func (s Session) Email() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Email
}

func (s Session) clone() Session {
	out := s
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	return out
}

func sameIdentity(a, b *UserIdentity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

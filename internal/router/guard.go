package router

import "github.com/freelance-hub/jobhub/internal/session"

// Outcome is the guard's verdict.
type Outcome int

const (
	// Pending means the session is still resolving; render a placeholder.
	Pending Outcome = iota
	// Allow renders the requested page.
	Allow
	// Redirect sends the user to sign in.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of guarding a protected path.
type Decision struct {
	Outcome Outcome
	To      string // redirect target
	From    string // originally requested path
}

// Guard decides whether a protected path may render for s.
func Guard(s session.Session, requested string) Decision {
	switch {
	case s.Resolving:
		return Decision{Outcome: Pending, From: requested}
	case s.Authenticated():
		return Decision{Outcome: Allow}
	default:
		return Decision{Outcome: Redirect, To: PathLogin, From: requested}
	}
}

// Resolution is a path looked up in the route table and guarded if needed.
type Resolution struct {
	Match    Match
	Found    bool
	Decision Decision
}

// Resolve matches path and guards it when the route is protected. Public and
// unknown paths are always allowed; unknown ones render the not-found page.
func Resolve(s session.Session, path string) Resolution {
	m, ok := Lookup(path)
	if !ok {
		return Resolution{Match: m, Decision: Decision{Outcome: Allow}}
	}
	if !m.Route.Protected {
		return Resolution{Match: m, Found: true, Decision: Decision{Outcome: Allow}}
	}
	return Resolution{Match: m, Found: true, Decision: Guard(s, m.Path)}
}

// AfterLogin is where a successful sign-in lands: the path that was
// redirected, or home.
func AfterLogin(from string) string {
	m, ok := Lookup(from)
	if !ok || from == "" || m.Route.Page == PageLogin || m.Route.Page == PageRegister {
		return PathHome
	}
	return m.Path
}

package session

// EventKind classifies store writes.
type EventKind int

const (
	EventIdentityChanged  EventKind = iota // principal replaced or cleared
	EventResolvingChanged                  // resolving flag flipped
)

func (k EventKind) String() string {
	switch k {
	case EventIdentityChanged:
		return "identity"
	case EventResolvingChanged:
		return "resolving"
	default:
		return "unknown"
	}
}

// Event carries the session snapshot taken right after a write.
type Event struct {
	Kind    EventKind
	Session Session // snapshot (safe to retain)
}

// Listener receives store events synchronously.
type Listener func(Event)

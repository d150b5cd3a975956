package session

import (
	"slices"
	"sync"
)

// Reader is the read side of the store handed to guards, views and clients.
type Reader interface {
	Current() Session
	Subscribe(Listener) (unsubscribe func())
}

// Store owns the process-wide Session. The auth gateway is its only writer.
type Store struct {
	mu        sync.RWMutex
	session   Session
	listeners map[int]Listener
	nextID    int

	// notifyMu keeps listener delivery in write order.
	notifyMu sync.Mutex
}

// NewStore returns a store in the initial state: no identity, resolving.
func NewStore() *Store {
	return &Store{
		session:   Session{Resolving: true},
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

// Subscribe registers fn for all future writes. Listeners are called in
// registration order and must not write to the store.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SetIdentity replaces the principal wholesale. It reports whether the
// stored value changed; unchanged writes notify nobody.
func (s *Store) SetIdentity(id *UserIdentity) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if sameIdentity(s.session.Identity, id) {
		s.mu.Unlock()
		return false
	}
	if id != nil {
		copy := *id
		id = &copy
	}
	s.session.Identity = id
	ev := Event{Kind: EventIdentityChanged, Session: s.session.clone()}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	deliver(listeners, ev)
	return true
}

// SetResolving flips the resolving flag. It reports whether the value changed.
func (s *Store) SetResolving(resolving bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.session.Resolving == resolving {
		s.mu.Unlock()
		return false
	}
	s.session.Resolving = resolving
	ev := Event{Kind: EventResolvingChanged, Session: s.session.clone()}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	deliver(listeners, ev)
	return true
}

// snapshotListeners must be called with mu held.
func (s *Store) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func deliver(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}

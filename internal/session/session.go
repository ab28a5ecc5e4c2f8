package session

import (
	"sync"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
)

// Store holds the current login. The login screen writes it; the private
// client reads it on every request through Accessor.
type Store struct {
	mu      sync.RWMutex
	current *domain.AuthSession
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Set replaces the current session.
func (s *Store) Set(sess *domain.AuthSession) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// Get returns the current session or nil.
func (s *Store) Get() *domain.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear forgets the current session.
func (s *Store) Clear() {
	s.Set(nil)
}

// Authenticated reports whether a session with a usable token is present.
func (s *Store) Authenticated() bool {
	return s.Get().Token() != ""
}

// Accessor returns the function the private client evaluates per request.
func (s *Store) Accessor() httpclient.SessionFunc {
	return func() httpclient.Session {
		sess := s.Get()
		if sess == nil {
			// a typed nil would not compare equal to nil in the client
			return nil
		}
		return sess
	}
}

package oauth

import (
	"sync"
	"time"
)

// stateEntry is a started login waiting for the provider callback.
type stateEntry struct {
	next      string
	expiresAt time.Time
}

// stateStore keeps issued state tokens until the provider redirects back or
// the entry expires.
type stateStore struct {
	mu      sync.Mutex
	entries map[string]stateEntry
}

func newStateStore() *stateStore {
	return &stateStore{
		entries: make(map[string]stateEntry),
	}
}

// Put stores a state token together with the next target carried through the
// provider round trip.
func (s *stateStore) Put(state, next string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state] = stateEntry{
		next:      next,
		expiresAt: time.Now().Add(ttl),
	}
}

// Take consumes a state token and returns the carried next target. A token
// can be taken once; unknown or expired tokens report false.
func (s *stateStore) Take(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return "", false
	}

	delete(s.entries, state)

	if time.Now().After(entry.expiresAt) {
		return "", false
	}

	return entry.next, true
}

// cleanup periodically removes expired entries left by logins that never
// came back.
func (s *stateStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		s.mu.Lock()

		for state, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, state)
			}
		}

		s.mu.Unlock()
	}
}

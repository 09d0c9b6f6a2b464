// authenticationhandler/tokenstore.go
package authenticationhandler

import "sync"

// TokenStore is the get/set capability through which the client reads and
// replaces the session token. Implementations must be safe for concurrent use.
// An empty token means no session.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore returns a store seeded with token, which may be empty.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

// Token returns the current token.
func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// SetToken replaces the current token. An empty token clears the session.
func (s *MemoryTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

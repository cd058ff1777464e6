package dashboard

import (
	"sync"

	"github.com/kirinyoku/tixmarket/internal/domain"
)

// Session is the signed-in identity of a dashboard. It is filled by
// Client.Login and emptied on logout or when the API rejects the token.
type Session struct {
	mu    sync.RWMutex
	token string
	email string
	role  domain.Role
}

func (s *Session) set(token, email string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.email, s.role = token, email, role
}

func (s *Session) setRole(role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.role = role
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Role is the role the API reported at login, or "" when signed out.
func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) Active() bool {
	return s.Token() != ""
}

func (s *Session) Clear() {
	s.set("", "", "")
}

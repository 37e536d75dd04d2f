package state

import (
	"fmt"
	"sync"

	"github.com/smartexpense/smartexpense/internal/model"
	"github.com/smartexpense/smartexpense/internal/store"
)

// Session holds the authenticated user and the last earning snapshot.
// It is restored from the Persister on construction.
type Session struct {
	p Persister

	mu      sync.RWMutex
	user    *model.User
	earning *model.Earning

	subs observers[*model.User]
}

// NewSession restores the session from p. A nil p keeps state in memory only.
func NewSession(p Persister) *Session {
	s := &Session{p: p}
	if p == nil {
		return s
	}

	var u model.User
	if err := p.GetJSON(store.KeyUser, &u); err == nil && u.ID != 0 {
		s.user = &u
	}
	var e model.Earning
	if err := p.GetJSON(store.KeyCurrentEarning, &e); err == nil && e.EarningDate != "" {
		if s.user != nil && (e.UserID == 0 || e.UserID == s.user.ID) {
			s.earning = &e
		}
	}
	return s
}

// User returns the session user, if any.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Earning returns the stored earning snapshot, if any.
func (s *Session) Earning() (model.Earning, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.earning == nil {
		return model.Earning{}, false
	}
	return *s.earning, true
}

// Login records u as the session user and notifies subscribers. The
// earning snapshot is dropped unless u is already the session user.
func (s *Session) Login(u model.User) error {
	s.mu.RLock()
	sameUser := s.user != nil && s.user.ID == u.ID
	s.mu.RUnlock()

	if s.p != nil {
		if !sameUser {
			if err := s.p.Delete(store.KeyCurrentEarning); err != nil {
				return fmt.Errorf("clearing earning snapshot: %w", err)
			}
		}
		if err := s.p.SetJSON(store.KeyUser, u); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}
	s.mu.Lock()
	if !sameUser {
		s.earning = nil
	}
	s.user = &u
	s.mu.Unlock()

	s.subs.notify(&u)
	return nil
}

// Logout clears the session user and the earning snapshot.
func (s *Session) Logout() error {
	if s.p != nil {
		if err := s.p.Delete(store.KeyUser); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		if err := s.p.Delete(store.KeyCurrentEarning); err != nil {
			return fmt.Errorf("clearing earning snapshot: %w", err)
		}
	}
	s.mu.Lock()
	s.user = nil
	s.earning = nil
	s.mu.Unlock()

	s.subs.notify(nil)
	return nil
}

// SetEarning replaces the earning snapshot.
func (s *Session) SetEarning(e model.Earning) error {
	if s.p != nil {
		if err := s.p.SetJSON(store.KeyCurrentEarning, e); err != nil {
			return fmt.Errorf("saving earning snapshot: %w", err)
		}
	}
	s.mu.Lock()
	s.earning = &e
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn for login/logout changes. fn receives nil on logout.
func (s *Session) Subscribe(fn func(*model.User)) (unsubscribe func()) {
	return s.subs.add(fn)
}

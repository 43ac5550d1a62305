// Package memstore provides process-local adapters used when Redis is not configured.
// State does not survive restarts and is not shared between replicas.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.LoginStateStore = (*LoginStateStore)(nil)

// DefaultSweepEvery is how many saves pass between sweeps of expired entries.
const DefaultSweepEvery = 64

// LoginStateStore is an in-memory ports.LoginStateStore. Expired entries are
// dropped lazily, once every sweepEvery saves.
type LoginStateStore struct {
	mu         sync.Mutex
	pending    map[string]domainauth.PendingLogin
	saves      int
	sweepEvery int
	now        func() time.Time
}

// NewLoginStateStore creates an empty store.
func NewLoginStateStore() *LoginStateStore {
	return &LoginStateStore{
		pending:    make(map[string]domainauth.PendingLogin),
		sweepEvery: DefaultSweepEvery,
		now:        time.Now,
	}
}

// Save stores p until it expires.
func (s *LoginStateStore) Save(_ context.Context, p domainauth.PendingLogin) error {
	if p.State == "" {
		return errors.New("login state cannot be empty")
	}
	now := s.now()
	if p.Expired(now) {
		return errors.New("pending login is expired")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saves >= s.sweepEvery {
		s.saves = 0
		s.sweepLocked(now)
	}
	s.pending[p.State] = p
	return nil
}

func (s *LoginStateStore) sweepLocked(now time.Time) {
	for k, v := range s.pending {
		if v.Expired(now) {
			delete(s.pending, k)
		}
	}
}

// Consume returns and removes the pending login for state.
func (s *LoginStateStore) Consume(_ context.Context, state string) (domainauth.PendingLogin, error) {
	s.mu.Lock()
	p, ok := s.pending[state]
	delete(s.pending, state)
	s.mu.Unlock()

	if !ok || p.Expired(s.now()) {
		return domainauth.PendingLogin{}, domainauth.ErrLoginStateNotFound
	}
	return p, nil
}

// Len reports how many pending logins are held, including expired ones not yet swept.
func (s *LoginStateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

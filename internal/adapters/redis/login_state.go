// Package redis provides Redis-backed adapters: the pending-login store and the
// outbound email queue.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.LoginStateStore = (*LoginStateStore)(nil)

// DefaultLoginStatePrefix namespaces pending-login keys.
const DefaultLoginStatePrefix = "eventhub:login:"

// LoginStateStore keeps pending logins in Redis until the IdP callback consumes them.
// Keys expire with the pending login.
type LoginStateStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewLoginStateStore creates a Redis-based login state store.
func NewLoginStateStore(client redis.UniversalClient) *LoginStateStore {
	return NewLoginStateStoreWithPrefix(client, DefaultLoginStatePrefix)
}

// NewLoginStateStoreWithPrefix creates a store with a custom key prefix.
func NewLoginStateStoreWithPrefix(client redis.UniversalClient, prefix string) *LoginStateStore {
	return &LoginStateStore{client: client, prefix: prefix, now: time.Now}
}

// Save stores p until p.ExpiresAt.
func (s *LoginStateStore) Save(ctx context.Context, p domainauth.PendingLogin) error {
	if p.State == "" {
		return errors.New("login state cannot be empty")
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("pending login is expired")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending login: %w", err)
	}
	return s.client.Set(ctx, s.prefix+p.State, data, ttl).Err()
}

// Consume atomically reads and deletes the pending login, so a state value can be used once.
func (s *LoginStateStore) Consume(ctx context.Context, state string) (domainauth.PendingLogin, error) {
	if state == "" {
		return domainauth.PendingLogin{}, domainauth.ErrLoginStateNotFound
	}

	data, err := s.client.GetDel(ctx, s.prefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.PendingLogin{}, domainauth.ErrLoginStateNotFound
	}
	if err != nil {
		return domainauth.PendingLogin{}, fmt.Errorf("redis getdel: %w", err)
	}

	var p domainauth.PendingLogin
	if err := json.Unmarshal(data, &p); err != nil {
		return domainauth.PendingLogin{}, fmt.Errorf("unmarshal pending login: %w", err)
	}
	if p.Expired(s.now()) {
		return domainauth.PendingLogin{}, domainauth.ErrLoginStateNotFound
	}
	return p, nil
}

// Package auth contains simple hand-written test doubles for auth and notification ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.TokenCodec   = (*FakeTokenCodec)(nil)
	_ ports.Notifier     = (*RecordingNotifier)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			Subject:    "mock-sub-1",
			Email:      "mock.student@students.college.edu",
			Name:       "Mock Student",
			GivenName:  "Mock",
			FamilyName: "Student",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := fallback(m.AuthURL, "https://mock-idp/auth")
	state := fmt.Sprintf("%s-%d", fallback(m.StatePrefix, "state"), n)
	nonce := fmt.Sprintf("%s-%d", fallback(m.NoncePrefix, "nonce"), n)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if m.DefaultUser.Email == "" {
		return NewMockAuthProvider().DefaultUser, nil
	}
	return m.DefaultUser, nil
}

// FakeTokenCodec encodes tokens as unsigned base64 JSON. Only for tests.
type FakeTokenCodec struct {
	TTL time.Duration
	Now func() time.Time
}

const fakeTokenPrefix = "fake."

type fakeWire struct {
	domainauth.Token
	Iat time.Time `json:"iat"`
	Exp time.Time `json:"exp"`
}

func (c *FakeTokenCodec) Encode(tok domainauth.Token) (string, domainauth.Token, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	ttl := c.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	tok.IssuedAt = now
	tok.ExpiresAt = now.Add(ttl)
	b, err := json.Marshal(fakeWire{Token: tok, Iat: tok.IssuedAt, Exp: tok.ExpiresAt})
	if err != nil {
		return "", domainauth.Token{}, err
	}
	return fakeTokenPrefix + base64.RawURLEncoding.EncodeToString(b), tok, nil
}

func (c *FakeTokenCodec) Decode(raw string) (domainauth.Token, error) {
	enc, ok := strings.CutPrefix(raw, fakeTokenPrefix)
	if !ok {
		return domainauth.Token{}, domainauth.ErrInvalidToken
	}
	b, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return domainauth.Token{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
	}
	var w fakeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return domainauth.Token{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
	}
	tok := w.Token
	tok.IssuedAt, tok.ExpiresAt = w.Iat, w.Exp
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	if tok.Expired(now) {
		return domainauth.Token{}, fmt.Errorf("%w: expired", domainauth.ErrInvalidToken)
	}
	return tok, nil
}

// RecordingNotifier records every email it is asked to send. Err, when set, is returned.
type RecordingNotifier struct {
	Err error

	mu   sync.Mutex
	sent []model.EventEmail
}

func (n *RecordingNotifier) Notify(_ context.Context, msg model.EventEmail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.Err
}

// Sent returns a copy of the recorded emails.
func (n *RecordingNotifier) Sent() []model.EventEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.EventEmail(nil), n.sent...)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

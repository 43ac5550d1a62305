package ports

// Package ports defines interfaces (hexagonal ports) for auth and notification behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying the nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	// Encode signs tok, stamping IssuedAt and ExpiresAt, and returns the wire form
	// together with the stamped token.
	Encode(tok domainauth.Token) (string, domainauth.Token, error)
	// Decode verifies raw and returns its content. Invalid or expired tokens
	// yield an error wrapping domainauth.ErrInvalidToken.
	Decode(raw string) (domainauth.Token, error)
}

// LoginStateStore keeps pending logins between Begin and the IdP callback.
type LoginStateStore interface {
	Save(ctx context.Context, p domainauth.PendingLogin) error
	// Consume returns and deletes the pending login for state. A missing or
	// already-consumed state yields domainauth.ErrLoginStateNotFound.
	Consume(ctx context.Context, state string) (domainauth.PendingLogin, error)
}

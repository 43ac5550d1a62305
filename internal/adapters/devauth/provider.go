// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/ports"
)

// CallbackPath is where Begin sends the browser; it must match the real callback route.
const CallbackPath = "/api/auth/callback"

// Config controls the dev auth provider behavior. Name is optional.
type Config struct {
	Subject string
	Email   string
	Name    string
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce. Exchange ignores the code and
// returns the configured identity.
type Provider struct {
	identity domainauth.Identity
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev auth: Subject is required")
	}
	email := domainauth.NormalizeEmail(cfg.Email)
	if email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	given, family, _ := strings.Cut(strings.TrimSpace(cfg.Name), " ")
	return &Provider{
		identity: domainauth.Identity{
			Subject:    cfg.Subject,
			Email:      email,
			Name:       strings.TrimSpace(cfg.Name),
			GivenName:  given,
			FamilyName: family,
		},
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return CallbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity. State and nonce checks are the caller's job.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	return p.identity, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}

package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/eventhub/internal/ports"
)

// fakeIssuer is a minimal OIDC issuer: discovery, JWKS, token and userinfo endpoints.
type fakeIssuer struct {
	srv      *httptest.Server
	key      *rsa.PrivateKey
	nonce    string
	claims   jwt.MapClaims
	userinfo map[string]any
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeIssuer{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                f.srv.URL,
			"authorization_endpoint":                f.srv.URL + "/auth",
			"token_endpoint":                        f.srv.URL + "/token",
			"userinfo_endpoint":                     f.srv.URL + "/userinfo",
			"jwks_uri":                              f.srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, _ *http.Request) {
		pub := f.key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		claims := jwt.MapClaims{
			"iss":   f.srv.URL,
			"aud":   "client",
			"sub":   "google-123",
			"exp":   time.Now().Add(time.Hour).Unix(),
			"iat":   time.Now().Unix(),
			"nonce": f.nonce,
		}
		for k, v := range f.claims {
			claims[k] = v
		}
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		tok.Header["kid"] = "test"
		signed, err := tok.SignedString(f.key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userinfo)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) provider(t *testing.T, mutate func(*ProviderConfig)) *Provider {
	t.Helper()
	cfg := ProviderConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/auth/callback",
		DiscoveryURL: f.srv.URL,
		HTTPClient:   f.srv.Client(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	return p
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://x"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "c", RedirectURL: "http://x/cb", DiscoveryURL: "http://x"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "c", ClientSecret: "s", DiscoveryURL: "http://x"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb"},
			errMsg: "discovery URL is required",
		},
		{
			name: "bad claim expression",
			config: ProviderConfig{
				ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://x",
				EmailClaim: "email[",
			},
			errMsg: "email claim",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	f := newFakeIssuer(t)
	p := f.provider(t, nil)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/events"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, f.srv.URL+"/auth", u.Scheme+"://"+u.Host+u.Path)
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	assert.Error(t, err)
}

func TestProvider_Exchange(t *testing.T) {
	f := newFakeIssuer(t)
	f.nonce = "n-1"
	f.claims = jwt.MapClaims{
		"email":       "Alice@Students.College.edu",
		"name":        "Alice Example",
		"given_name":  "Alice",
		"family_name": "Example",
		"picture":     "https://img/alice.png",
	}
	p := f.provider(t, nil)

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-1"})
	require.NoError(t, err)
	assert.Equal(t, "google-123", id.Subject)
	assert.Equal(t, "alice@students.college.edu", id.Email)
	assert.Equal(t, "Alice Example", id.Name)
	assert.Equal(t, "Alice", id.GivenName)
	assert.Equal(t, "https://img/alice.png", id.Picture)
}

func TestProvider_Exchange_NonceMismatch(t *testing.T) {
	f := newFakeIssuer(t)
	f.nonce = "issued"
	f.claims = jwt.MapClaims{"email": "a@students.college.edu"}
	p := f.provider(t, nil)

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid nonce")
}

func TestProvider_Exchange_ClaimExpressionsAndUserInfoFallback(t *testing.T) {
	f := newFakeIssuer(t)
	f.nonce = "n"
	f.userinfo = map[string]any{
		"sub":     "google-123",
		"profile": map[string]any{"mail": "bob@students.college.edu", "display": "Bob B"},
	}
	p := f.provider(t, func(c *ProviderConfig) {
		c.EmailClaim = "profile.mail"
		c.NameClaim = "profile.display"
	})

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "bob@students.college.edu", id.Email)
	assert.Equal(t, "Bob B", id.Name)
}

func TestProvider_Exchange_RequiredInputs(t *testing.T) {
	f := newFakeIssuer(t)
	p := f.provider(t, nil)
	ctx := context.Background()

	_, err := p.Exchange(ctx, ports.ExchangeInput{State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "authorization code is required")
	_, err = p.Exchange(ctx, ports.ExchangeInput{Code: "c", Nonce: "n"})
	assert.ErrorContains(t, err, "state is required")
	_, err = p.Exchange(ctx, ports.ExchangeInput{Code: "c", State: "s"})
	assert.ErrorContains(t, err, "nonce is required")
}

func TestGenerateRandomString(t *testing.T) {
	s, err := generateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 16)
	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

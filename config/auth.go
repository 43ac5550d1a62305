package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

const minTokenSecretLen = 32

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/api/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL" envDefault:"https://accounts.google.com"`
	// EmailClaim and NameClaim are JMESPath expressions evaluated against the ID token claims.
	EmailClaim string `env:"EMAIL_CLAIM" envDefault:"email"`
	NameClaim  string `env:"NAME_CLAIM"  envDefault:"name"`
}

// DevAuthConfig controls the mock identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	Subject string `env:"SUBJECT" envDefault:"dev-user"`
	Email   string `env:"EMAIL"   envDefault:"dev@students.college.edu"`
	Name    string `env:"NAME"    envDefault:"Dev Student"`
}

// Session token lifetime bounds.
const (
	DefaultTokenTTL = 12 * time.Hour
	MaxTokenTTL     = 24 * time.Hour
)

// TokenConfig controls the signed session token.
type TokenConfig struct {
	// Secret signs tokens with HMAC-SHA256. Required outside dev mode.
	Secret string `env:"SECRET"`
	// TTL bounds how long a role change can go unnoticed: tokens of complete
	// profiles are not re-read from the directory until they expire.
	TTL    time.Duration `env:"TTL"    envDefault:"12h"`
	Issuer string        `env:"ISSUER" envDefault:"eventhub"`
	// CookieName is the cookie carrying the token.
	CookieName string `env:"COOKIE_NAME" envDefault:"eventhub_session"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AllowedDomains are the email domains permitted to sign in (e.g. "students.college.edu").
	AllowedDomains []string `env:"ALLOWED_DOMAINS" envDefault:"students.college.edu" envSeparator:","`

	Token TokenConfig `envPrefix:"SESSION_TOKEN_"`
}

// Sanitize normalizes domains and clamps the token TTL.
func (a *AuthConfig) Sanitize() {
	domains := a.AllowedDomains[:0]
	for _, d := range a.AllowedDomains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "@")
		if d != "" {
			domains = append(domains, d)
		}
	}
	a.AllowedDomains = domains

	switch {
	case a.Token.TTL <= 0:
		a.Token.TTL = DefaultTokenTTL
	case a.Token.TTL < time.Minute:
		a.Token.TTL = time.Minute
	case a.Token.TTL > MaxTokenTTL:
		a.Token.TTL = MaxTokenTTL
	}
	if strings.TrimSpace(a.Token.CookieName) == "" {
		a.Token.CookieName = "eventhub_session"
	}
}

// Validate rejects configurations that would accept arbitrary sign-ins or forgeable tokens.
// An allowed domain that is itself a public suffix (e.g. "edu", "co.uk") would admit
// every address under it.
func (a *AuthConfig) Validate(isDev bool) error {
	var errs []error
	if len(a.AllowedDomains) == 0 {
		errs = append(errs, errors.New("ALLOWED_DOMAINS must list at least one domain"))
	}
	for _, d := range a.AllowedDomains {
		if suffix, icann := publicsuffix.PublicSuffix(d); icann && suffix == d {
			errs = append(errs, fmt.Errorf("allowed domain %q is a public suffix", d))
		}
	}
	if !isDev && len(a.Token.Secret) < minTokenSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_TOKEN_SECRET must be at least %d bytes", minTokenSecretLen))
	}
	if a.Mode == AuthModeMock && !isDev {
		errs = append(errs, errors.New("AUTH_MODE=mock is only allowed in dev mode"))
	}
	return errors.Join(errs...)
}

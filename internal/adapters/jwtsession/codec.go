// Package jwtsession signs and verifies session tokens as HS256 JWTs.
package jwtsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.TokenCodec = (*Codec)(nil)

// MinSecretLen is the shortest HMAC secret accepted.
const MinSecretLen = 32

// Claims is the JWT body. Subject mirrors the directory user id.
type Claims struct {
	Email             string          `json:"email"`
	Name              string          `json:"name,omitempty"`
	IsProfileComplete bool            `json:"isProfileComplete"`
	Role              domainauth.Role `json:"role"`
	jwt.RegisteredClaims
}

// Config configures a Codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// Codec implements ports.TokenCodec.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec validates cfg and returns a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLen)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Codec{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    now,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Encode stamps fresh IssuedAt/ExpiresAt on tok and signs it.
func (c *Codec) Encode(tok domainauth.Token) (string, domainauth.Token, error) {
	if tok.Email == "" {
		return "", domainauth.Token{}, errors.New("token email is required")
	}
	now := c.now().Truncate(time.Second)
	tok.IssuedAt = now
	tok.ExpiresAt = now.Add(c.ttl)
	if !tok.Role.Valid() {
		tok.Role = domainauth.DefaultRole
	}

	claims := Claims{
		Email:             tok.Email,
		Name:              tok.Name,
		IsProfileComplete: tok.IsProfileComplete,
		Role:              tok.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   tok.UserID,
			IssuedAt:  jwt.NewNumericDate(tok.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(tok.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", domainauth.Token{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, tok, nil
}

// Decode verifies raw and returns the token it carries.
func (c *Codec) Decode(raw string) (domainauth.Token, error) {
	if raw == "" {
		return domainauth.Token{}, fmt.Errorf("%w: empty", domainauth.ErrInvalidToken)
	}
	var claims Claims
	_, err := c.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return domainauth.Token{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return domainauth.Token{}, fmt.Errorf("%w: missing email", domainauth.ErrInvalidToken)
	}

	role := claims.Role
	if !role.Valid() {
		role = domainauth.DefaultRole
	}
	tok := domainauth.Token{
		UserID:            claims.Subject,
		Email:             domainauth.NormalizeEmail(claims.Email),
		Name:              claims.Name,
		IsProfileComplete: claims.IsProfileComplete,
		Role:              role,
	}
	if claims.IssuedAt != nil {
		tok.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Time
	}
	return tok, nil
}

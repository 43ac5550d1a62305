package auth

// Package auth contains domain-level types for authentication, session tokens and roles.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// The set is closed; persistence and token claims use the upper-case string form.
type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleCoordinator Role = "COORDINATOR"
	RoleAdmin       Role = "ADMIN"
)

// DefaultRole is assigned to users without an elevated role.
const DefaultRole = RoleStudent

// Roles returns every valid role, lowest privilege first.
func Roles() []Role {
	return []Role{RoleStudent, RoleCoordinator, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCoordinator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name case-insensitively. An empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	v := Role(strings.ToUpper(strings.TrimSpace(s)))
	if v == "" {
		return DefaultRole, nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("invalid role %q (valid options: STUDENT, COORDINATOR, ADMIN)", s)
	}
	return v, nil
}

// UnmarshalText implements encoding.TextUnmarshaler for Role.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// Token is the content of a signed session token.
// Codecs in internal/adapters serialize it; the field set is the external contract
// consumed by downstream handlers.
type Token struct {
	UserID            string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name,omitempty"`
	IsProfileComplete bool      `json:"isProfileComplete"`
	Role              Role      `json:"role"`
	IssuedAt          time.Time `json:"-"`
	ExpiresAt         time.Time `json:"-"`
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Trigger tells Refresh why it runs.
type Trigger int

const (
	// TriggerNone is an ordinary request.
	TriggerNone Trigger = iota
	// TriggerUpdate is an explicit refresh request (e.g. right after profile completion).
	TriggerUpdate
)

// Sentinel errors for the access-control taxonomy.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrIncompleteProfile    = errors.New("profile incomplete")
	ErrUnauthorized         = errors.New("insufficient permissions")
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	ErrRejectedDomain       = errors.New("email domain not allowed")
	ErrInvalidToken         = errors.New("invalid session token")
)

// RejectedDomainError carries the offending email so callers can show it back to the user.
type RejectedDomainError struct {
	Email string
}

func (e *RejectedDomainError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejectedDomain.Error(), e.Email)
}

// Unwrap lets errors.Is match ErrRejectedDomain.
func (e *RejectedDomainError) Unwrap() error { return ErrRejectedDomain }

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

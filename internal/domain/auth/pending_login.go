package auth

import (
	"errors"
	"time"
)

// PendingLoginTTL bounds how long a started login may take to return from the IdP.
const PendingLoginTTL = 10 * time.Minute

// ErrLoginStateNotFound is returned when a callback state is unknown, expired or already used.
var ErrLoginStateNotFound = errors.New("login state not found")

// PendingLogin is the server-side record of a login started with the IdP.
type PendingLogin struct {
	State        string    `json:"state"`
	Nonce        string    `json:"nonce"`
	CallbackPath string    `json:"callbackPath"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the pending login can no longer be completed.
func (p PendingLogin) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

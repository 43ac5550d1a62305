package httpx

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultSessionCookie is used when no cookie name is configured.
	DefaultSessionCookie = "eventhub_session"

	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // matches the server-side pending login TTL
)

// Cookies writes and clears the cookies the application owns.
type Cookies struct {
	// SessionName is the name of the cookie holding the signed session token.
	SessionName string
	Domain      string
}

func (c Cookies) sessionName() string {
	if c.SessionName == "" {
		return DefaultSessionCookie
	}
	return c.SessionName
}

// Session returns the raw session token carried by the request, or "".
func (c Cookies) Session(r *http.Request) string {
	ck, err := r.Cookie(c.sessionName())
	if err != nil {
		return ""
	}
	return ck.Value
}

// SetSession writes the session cookie so that it expires with the token.
func (c Cookies) SetSession(w http.ResponseWriter, r *http.Request, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		c.clear(w, r, c.sessionName())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.sessionName(),
		Value:    raw,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearSession removes the session cookie.
func (c Cookies) ClearSession(w http.ResponseWriter, r *http.Request) {
	c.clear(w, r, c.sessionName())
}

func (c Cookies) setOAuthState(w http.ResponseWriter, r *http.Request, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   oauthStateMaxAge,
	})
}

// clear expires a cookie. It mirrors the attributes used when setting cookies
// so browsers match and delete it.
func (c Cookies) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

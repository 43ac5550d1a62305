package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campushub/eventhub/internal/domain/access"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/service"
)

// AuthService is the subset of service.AuthService used by the HTTP layer.
type AuthService interface {
	SessionAuthenticator
	BeginLogin(ctx context.Context, callbackPath string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthService
	Cookies Cookies
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /api/auth/login?callbackUrl=<optional_path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.BeginLogin(r.Context(), r.URL.Query().Get("callbackUrl"))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start sign-in"),
		})
		return
	}

	h.Cookies.setOAuthState(w, r, result.State)
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /api/auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	h.Cookies.clear(w, r, oauthStateCookie)

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{Code: code, State: state})
	if err != nil {
		var rejected *domainauth.RejectedDomainError
		if errors.As(err, &rejected) {
			http.Redirect(w, r, signupErrorURL("invalid_domain", rejected.Email), http.StatusSeeOther)
			return
		}
		h.logger().ErrorContext(r.Context(), "complete login failed", "error", err)
		http.Redirect(w, r, signupErrorURL("login_failed", ""), http.StatusSeeOther)
		return
	}

	h.Cookies.SetSession(w, r, result.Token, result.Claims.ExpiresAt)
	http.Redirect(w, r, service.SafeCallbackPath(result.CallbackPath), http.StatusFound)
}

// Logout discards the session cookie. Tokens are stateless, so there is nothing
// to revoke server-side.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.ClearSession(w, r)

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": "/"})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type sessionResponse struct {
	User    *domainauth.Token `json:"user"`
	Expires *time.Time        `json:"expires,omitempty"`
}

func newSessionResponse(claims *domainauth.Token) sessionResponse {
	if claims == nil {
		return sessionResponse{}
	}
	resp := sessionResponse{User: claims}
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt.UTC()
		resp.Expires = &exp
	}
	return resp
}

// Session returns the claims of the current session, or {"user": null}.
// GET /api/auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	WriteJSON(w, http.StatusOK, newSessionResponse(claims))
}

type sessionUpdateRequest struct {
	Update bool `json:"update"`
}

// UpdateSession re-validates the session against the user directory.
// POST /api/auth/session with {"update": true} forces a refresh even for a complete profile.
// The gate has already authenticated the request; the directory is read again
// only when an update is asked for and the gate did not read it.
func (h *AuthHandlers) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, h.Logger, domainauth.ErrUnauthenticated)
		return
	}
	if req.Update && !directoryReadFromContext(r.Context()) {
		claims, ok = refreshSession(w, r, h.Svc, h.Cookies, domainauth.TriggerUpdate)
		if !ok {
			writeServiceError(w, r, h.Logger, domainauth.ErrUnauthenticated)
			return
		}
	}
	WriteJSON(w, http.StatusOK, newSessionResponse(claims))
}

// refreshSession re-runs authentication for the request's cookie and re-issues
// it when the claims changed.
func refreshSession(
	w http.ResponseWriter,
	r *http.Request,
	svc SessionAuthenticator,
	cookies Cookies,
	trigger domainauth.Trigger,
) (*domainauth.Token, bool) {
	sess, err := svc.Authenticate(r.Context(), cookies.Session(r), trigger)
	if err != nil {
		cookies.ClearSession(w, r)
		return nil, false
	}
	setReissuedSession(w, r, cookies, sess)
	return &sess.Claims, true
}

func setReissuedSession(w http.ResponseWriter, r *http.Request, cookies Cookies, sess *service.Session) {
	if sess.Reissued() {
		cookies.SetSession(w, r, sess.Token, sess.Claims.ExpiresAt)
	}
}

func signupErrorURL(code, email string) string {
	q := url.Values{"error": {code}}
	if email != "" {
		q.Set("email", email)
	}
	return access.SignupPath + "?" + q.Encode()
}

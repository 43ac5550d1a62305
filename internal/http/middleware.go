package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/campushub/eventhub/internal/domain/access"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = loggerOrDefault(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = loggerOrDefault(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// Downstream handlers use it to decide between redirects and JSON errors.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	// Fallback to direct detection if middleware wasn't used
	return isBrowserRequest(r)
}

// isBrowserRequest treats /api/ routes as API calls and everything else as a
// browser navigation unless the Accept header excludes HTML.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

// SessionAuthenticator decodes and refreshes the session token of a request.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, raw string, trigger domainauth.Trigger) (*service.Session, error)
	Reissue(ctx context.Context, claims domainauth.Token, rec *domainauth.DirectoryRecord) *service.Session
}

// GateOptions groups dependencies for the Gate middleware.
type GateOptions struct {
	Gate    *access.Gate
	Auth    SessionAuthenticator
	Cookies Cookies
	Logger  *slog.Logger
}

// Gate runs the access decision for every request. Allowed requests continue
// with the session claims (if any) in their context. Denied browser requests are
// redirected with 303; denied API requests get a JSON 401 or 403.
func Gate(opts GateOptions) func(http.Handler) http.Handler {
	logger := loggerOrDefault(opts.Logger).With("component", "access_gate")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Gate.Routes().IsStatic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims, looked := authenticateRequest(w, r, opts, logger)
			decision := opts.Gate.Decide(r.URL.Path, claims)
			if decision.Allowed() {
				ctx := SetClaimsInContext(r.Context(), claims)
				if looked {
					ctx = markDirectoryRead(ctx)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			target := decision.Target
			if decision.State == access.StateUnauthenticated {
				// Keep the query string so the user lands exactly where they were headed.
				target = access.SignupRedirect(r.URL.RequestURI())
			}
			logger.DebugContext(r.Context(), "access denied",
				"path", r.URL.Path,
				"state", decision.State,
				"redirect_to", target,
			)

			if IsBrowserRequest(r) {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			p := classifyError(decision.Cause())
			WriteJSON(w, p.Code, map[string]string{
				"error":       p.ErrCode,
				"message":     p.Err.Error(),
				"redirect_to": target,
			})
		})
	}
}

// authenticateRequest returns the claims of the request's session cookie, or nil,
// and whether the directory was read to produce them. An unusable cookie is
// cleared; a refreshed token is re-issued.
func authenticateRequest(w http.ResponseWriter, r *http.Request, opts GateOptions, logger *slog.Logger) (*domainauth.Token, bool) {
	raw := opts.Cookies.Session(r)
	if raw == "" {
		return nil, false
	}
	sess, err := opts.Auth.Authenticate(r.Context(), raw, domainauth.TriggerNone)
	if err != nil {
		logger.DebugContext(r.Context(), "session rejected", "error", err)
		opts.Cookies.ClearSession(w, r)
		return nil, false
	}
	if sess.Reissued() {
		opts.Cookies.SetSession(w, r, sess.Token, sess.Claims.ExpiresAt)
	}
	return &sess.Claims, sess.Looked
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

const defaultDirectoryTimeout = 2 * time.Second

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Codec    ports.TokenCodec
	States   ports.LoginStateStore
	Users    core.UserRepository
	Domains  *domainauth.DomainFilter

	// DirectoryTimeout bounds the directory read made while refreshing a token.
	DirectoryTimeout time.Duration
	Logger           *slog.Logger
	Now              func() time.Time
}

// AuthService orchestrates sign-in and the per-request session lifecycle by
// coordinating the IdP, the domain allow-list, the user directory and the token codec.
type AuthService struct {
	provider ports.AuthProvider
	codec    ports.TokenCodec
	states   ports.LoginStateStore
	users    core.UserRepository
	domains  *domainauth.DomainFilter
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("auth provider is required")
	case opts.Codec == nil:
		return nil, errors.New("token codec is required")
	case opts.States == nil:
		return nil, errors.New("login state store is required")
	case opts.Users == nil:
		return nil, errors.New("user repository is required")
	case opts.Domains == nil:
		return nil, errors.New("domain filter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.DirectoryTimeout
	if timeout <= 0 {
		timeout = defaultDirectoryTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		provider: opts.Provider,
		codec:    opts.Codec,
		states:   opts.States,
		users:    opts.Users,
		domains:  opts.Domains,
		timeout:  timeout,
		logger:   logger.With("component", "auth_service"),
		now:      now,
	}, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginLogin starts an IdP login and records the pending state server-side.
// callbackPath is where the user lands after sign-in; anything that is not a
// local path falls back to "/".
func (s *AuthService) BeginLogin(ctx context.Context, callbackPath string) (*BeginLoginResult, error) {
	callbackPath = SafeCallbackPath(callbackPath)

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: callbackPath})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	pending := domainauth.PendingLogin{
		State:        state,
		Nonce:        nonce,
		CallbackPath: callbackPath,
		ExpiresAt:    s.now().Add(domainauth.PendingLoginTTL),
	}
	if err := s.states.Save(ctx, pending); err != nil {
		return nil, fmt.Errorf("save login state: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
}

// CompleteLoginResult contains the signed session token and where to send the user next.
type CompleteLoginResult struct {
	Token        string
	Claims       domainauth.Token
	User         *model.User
	CallbackPath string
}

// CompleteLogin exchanges the authorization code, applies the domain allow-list,
// bootstraps the directory record and mints a session token.
// A rejected email is returned as *domainauth.RejectedDomainError.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	if in.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if in.State == "" {
		return nil, errors.New("state parameter is required")
	}

	pending, err := s.states.Consume(ctx, in.State)
	if err != nil {
		return nil, fmt.Errorf("consume login state: %w", err)
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  in.Code,
		State: in.State,
		Nonce: pending.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := s.domains.Check(identity.Email); err != nil {
		s.logger.WarnContext(ctx, "sign-in rejected", "email", identity.Email, "reason", "domain")
		return nil, err
	}

	user, err := ensureUser(ctx, s.users, identity)
	if err != nil {
		return nil, fmt.Errorf("bootstrap user: %w", err)
	}

	raw, claims, err := s.codec.Encode(domainauth.Mint(*user.DirectoryRecord()))
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	s.logger.InfoContext(ctx, "sign-in completed",
		"user_id", user.ID,
		"role", claims.Role,
		"profile_complete", claims.IsProfileComplete,
	)
	return &CompleteLoginResult{
		Token:        raw,
		Claims:       claims,
		User:         user,
		CallbackPath: pending.CallbackPath,
	}, nil
}

// Session is the outcome of authenticating one request.
type Session struct {
	Claims domainauth.Token
	// Token is the re-signed token when Refresh changed the claims, otherwise empty.
	Token string
	// Looked is set when the directory was consulted for this session.
	Looked bool
}

// Reissued reports whether the caller must replace the client's token.
func (s *Session) Reissued() bool { return s.Token != "" }

// Authenticate decodes raw and refreshes it against the directory when the
// profile is incomplete or trigger asks for it. Directory failures leave the
// token unchanged; only a missing or invalid token is an error.
func (s *AuthService) Authenticate(ctx context.Context, raw string, trigger domainauth.Trigger) (*Session, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domainauth.ErrUnauthenticated
	}
	tok, err := s.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainauth.ErrUnauthenticated, err)
	}
	if !domainauth.NeedsRefresh(tok, trigger) {
		return &Session{Claims: tok}, nil
	}

	sess := s.resign(ctx, tok, domainauth.Refresh(tok, s.lookup(ctx, tok.Email), trigger))
	sess.Looked = true
	return sess, nil
}

// Reissue applies rec to claims as an update trigger without reading the
// directory. Callers pass the record they just wrote.
func (s *AuthService) Reissue(ctx context.Context, claims domainauth.Token, rec *domainauth.DirectoryRecord) *Session {
	return s.resign(ctx, claims, domainauth.Refresh(claims, rec, domainauth.TriggerUpdate))
}

func (s *AuthService) resign(ctx context.Context, tok, next domainauth.Token) *Session {
	if domainauth.SameClaims(tok, next) {
		return &Session{Claims: tok}
	}
	signed, stamped, err := s.codec.Encode(next)
	if err != nil {
		s.logger.WarnContext(ctx, "re-sign session token failed", "email", tok.Email, "error", err)
		return &Session{Claims: next}
	}
	return &Session{Claims: stamped, Token: signed}
}

// lookup reads the directory record for email. Any failure is logged and
// reported as nil so the caller keeps the token it has.
func (s *AuthService) lookup(ctx context.Context, email string) *domainauth.DirectoryRecord {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, model.ErrUserNotFound) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "session refresh skipped",
			"email", email,
			"error", fmt.Errorf("%w: %w", domainauth.ErrDirectoryUnavailable, err),
		)
		return nil
	}
	return u.DirectoryRecord()
}

// AllowedDomains returns the domains accepted at sign-in.
func (s *AuthService) AllowedDomains() []string { return s.domains.Domains() }

// SafeCallbackPath keeps only same-origin absolute paths so the post-login
// redirect can never leave the site. Browsers drop tabs and newlines from
// URLs, so any control character is rejected before the prefix checks.
func SafeCallbackPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.IndexFunc(p, isControlRune) >= 0 {
		return "/"
	}
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return p
}

func isControlRune(r rune) bool { return r < 0x20 || r == 0x7f }

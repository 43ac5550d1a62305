package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campushub/eventhub/config"
	httpx "github.com/campushub/eventhub/internal/http"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Gate:          cfg.Services.Gate,
		Users:         cfg.Services.Users,
		Clubs:         cfg.Services.Clubs,
		Events:        cfg.Services.Events,
		Registrations: cfg.Services.Registrations,
		Notifications: cfg.Services.Notifications,
		Cookies: httpx.Cookies{
			SessionName: appCfg.Auth.Token.CookieName,
			Domain:      appCfg.HTTP.CookieDomain,
		},
		AllowedDomains: appCfg.Auth.AllowedDomains,
		HealthChecks:   cfg.Services.HealthChecks,
		Logger:         logger,
	}
	// A nil *AuthService must stay a nil interface so the router skips auth routes.
	if cfg.Services.Auth != nil {
		services.Auth = cfg.Services.Auth
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(services),
		ReadTimeout:       appCfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      appCfg.HTTP.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "HTTP server stopped")
	}

	return nil
}

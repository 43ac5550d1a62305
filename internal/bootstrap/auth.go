package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushub/eventhub/config"
	"github.com/campushub/eventhub/internal/adapters/devauth"
	"github.com/campushub/eventhub/internal/adapters/jwtsession"
	"github.com/campushub/eventhub/internal/adapters/memstore"
	"github.com/campushub/eventhub/internal/adapters/oidc"
	redisadapter "github.com/campushub/eventhub/internal/adapters/redis"
	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/ports"
	"github.com/campushub/eventhub/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth  config.AuthConfig
	IsDev bool
	// DirectoryTimeout bounds the user lookup made while refreshing a token.
	DirectoryTimeout time.Duration
	Users            core.UserRepository
	// RedisClient is optional; without it pending logins live in process memory.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	domains, err := domainauth.NewDomainFilter(cfg.Auth.AllowedDomains)
	if err != nil {
		return nil, fmt.Errorf("allowed domains: %w", err)
	}

	provider, err := buildAuthProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secret, err := tokenSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	codec, err := jwtsession.NewCodec(jwtsession.Config{
		Secret: secret,
		TTL:    cfg.Auth.Token.TTL,
		Issuer: cfg.Auth.Token.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:         provider,
		Codec:            codec,
		States:           buildLoginStateStore(cfg.RedisClient, logger),
		Users:            cfg.Users,
		Domains:          domains,
		DirectoryTimeout: cfg.DirectoryTimeout,
		Logger:           logger,
	})
}

//nolint:ireturn // the provider is chosen at runtime by auth mode.
func buildAuthProvider(ctx context.Context, cfg AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Subject: cfg.Auth.DevAuth.Subject,
			Email:   cfg.Auth.DevAuth.Email,
			Name:    cfg.Auth.DevAuth.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			EmailClaim:   oauth.EmailClaim,
			NameClaim:    oauth.NameClaim,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

//nolint:ireturn // redis or in-memory depending on deployment.
func buildLoginStateStore(client redis.UniversalClient, logger *slog.Logger) ports.LoginStateStore {
	if client == nil {
		logger.Warn("redis not configured; pending logins are kept in memory and do not survive restarts")
		return memstore.NewLoginStateStore()
	}
	return redisadapter.NewLoginStateStore(client)
}

// tokenSecret returns the configured signing secret. Dev mode without one gets a
// random per-process secret, so sessions end on restart.
func tokenSecret(cfg AuthConfig, logger *slog.Logger) ([]byte, error) {
	if len(cfg.Auth.Token.Secret) >= jwtsession.MinSecretLen {
		return []byte(cfg.Auth.Token.Secret), nil
	}
	if !cfg.IsDev {
		return nil, fmt.Errorf("session token secret must be at least %d bytes", jwtsession.MinSecretLen)
	}
	buf := make([]byte, jwtsession.MinSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Join(errors.New("generate dev session secret"), err)
	}
	logger.Warn("SESSION_TOKEN_SECRET not set; using a generated dev secret")
	return []byte(hex.EncodeToString(buf)), nil
}

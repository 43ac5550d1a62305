package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/campushub/eventhub/config"
	redisadapter "github.com/campushub/eventhub/internal/adapters/redis"
	"github.com/campushub/eventhub/internal/adapters/resend"
	"github.com/campushub/eventhub/internal/data"
	"github.com/campushub/eventhub/internal/domain/access"
	httpx "github.com/campushub/eventhub/internal/http"
	"github.com/campushub/eventhub/internal/ports"
	"github.com/campushub/eventhub/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Clubs         *service.ClubService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Notifications *service.NotificationService
	Gate          *access.Gate

	// Mailer drains the Redis outbox. Nil when Redis is not configured.
	Mailer *service.MailDispatcher

	HealthChecks []httpx.HealthCheck

	mailing Mailing
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users         *data.UserRepo
	Clubs         *data.ClubRepo
	Events        *data.EventRepo
	Registrations *data.RegistrationRepo
	Notifications *data.NotificationRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:         data.NewUserRepo(db),
		Clubs:         data.NewClubRepo(db),
		Events:        data.NewEventRepo(db),
		Registrations: data.NewRegistrationRepo(db),
		Notifications: data.NewNotificationRepo(db),
	}
}

// Mailing is the outbound email wiring: a notifier for services and, with
// Redis, the dispatcher that drains what the notifier queued.
type Mailing struct {
	Notifier   ports.Notifier
	Dispatcher *service.MailDispatcher
	async      *service.AsyncNotifier
}

// Wait blocks until direct sends started through Notifier have finished.
// Queued mail is left to the dispatcher.
func (m Mailing) Wait() {
	if m.async != nil {
		m.async.Wait()
	}
}

// BuildMailing sends through Resend. With a Redis client emails are queued for
// the mailer service; without one each email is sent on its own goroutine.
func BuildMailing(cfg config.NotifyConfig, client redis.UniversalClient, logger *slog.Logger) (Mailing, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		logger.Warn("RESEND_API_KEY not set; emails will be logged and skipped")
	}
	sender, err := resend.NewClient(resend.Config{
		APIKey:     cfg.APIKey,
		From:       cfg.From,
		APIURL:     cfg.APIURL,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.MaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return Mailing{}, fmt.Errorf("email client: %w", err)
	}

	if client == nil {
		async := service.NewAsyncNotifier(sender, cfg.Timeout, logger)
		return Mailing{Notifier: async, async: async}, nil
	}

	queue := redisadapter.NewMailQueue(client, cfg.QueueKey)
	dispatcher, err := service.NewMailDispatcher(service.MailDispatcherOptions{
		Queue:       queue,
		Sender:      sender,
		PollTimeout: cfg.PollTimeout,
		MaxAttempts: cfg.MaxRetries + 1,
		Logger:      logger,
	})
	if err != nil {
		return Mailing{}, fmt.Errorf("mail dispatcher: %w", err)
	}
	return Mailing{Notifier: queue, Dispatcher: dispatcher}, nil
}

// NewServices wires repositories, adapters and business services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return ServiceContainer{}, errors.New("service deps require config and database")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	repos := buildRepositories(deps.DB)

	mail, err := BuildMailing(cfg.Notify, deps.RedisClient, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	auth, err := BuildAuthService(ctx, AuthConfig{
		Auth:             cfg.Auth,
		IsDev:            cfg.IsDev,
		DirectoryTimeout: cfg.HTTP.DirectoryTimeout,
		Users:            repos.Users,
		RedisClient:      deps.RedisClient,
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("auth service: %w", err)
	}

	registrations, err := service.NewRegistrationService(service.RegistrationServiceOptions{
		Registrations: repos.Registrations,
		Events:        repos.Events,
		Users:         repos.Users,
		Notifications: repos.Notifications,
		Notifier:      mail.Notifier,
		Logger:        logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("registration service: %w", err)
	}

	gate, err := access.NewGate(access.DefaultRouteTable())
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("access gate: %w", err)
	}

	return ServiceContainer{
		Auth: auth,
		Users: service.NewUserService(service.UserServiceOptions{
			Repo:   repos.Users,
			Clubs:  repos.Clubs,
			Logger: logger,
		}),
		Clubs: service.NewClubService(service.ClubServiceOptions{Repo: repos.Clubs}),
		Events: service.NewEventService(service.EventServiceOptions{
			Events: repos.Events,
			Users:  repos.Users,
			Logger: logger,
		}),
		Registrations: registrations,
		Notifications: service.NewNotificationService(service.NotificationServiceOptions{Repo: repos.Notifications}),
		Gate:          gate,
		Mailer:        mail.Dispatcher,
		HealthChecks:  readinessChecks(deps.DB, deps.RedisClient),
		mailing:       mail,
	}, nil
}

func readinessChecks(db *sql.DB, client redis.UniversalClient) []httpx.HealthCheck {
	checks := []httpx.HealthCheck{{Name: "postgres", Check: db.PingContext}}
	if client != nil {
		checks = append(checks, httpx.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}
	return checks
}

// ServiceOrchestrationConfig groups what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown runs every enabled service until ctx is cancelled or
// one of them fails, then stops the rest gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	if enabled[config.ServiceModeMailer] && cfg.Services.Mailer == nil {
		return errors.New("mailer service requires redis")
	}

	g, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		g.Go(func() error {
			logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", serveErr)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Context: context.WithoutCancel(gctx),
				Server:  server,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeMailer] {
		g.Go(func() error {
			if runErr := cfg.Services.Mailer.Run(gctx); runErr != nil {
				return fmt.Errorf("mail dispatcher: %w", runErr)
			}
			return nil
		})
	}

	err = g.Wait()
	// Confirmation emails started by the last requests may still be in flight.
	cfg.Services.mailing.Wait()
	logger.Info("services stopped")
	return err
}

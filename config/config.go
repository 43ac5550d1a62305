package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: sign-in, allowed domains and session tokens
//   - database.go: PostgreSQL and Redis
//   - http.go: HTTP server
//   - notify.go: outbound email
//   - services.go: service modes
type AppConfig struct {
	// IsDev relaxes production guardrails (e.g. a generated token secret).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Notify NotifyConfig

	// Services is a comma-separated list of services to run in this process.
	Services string `env:"SERVICES" envDefault:"http"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Notify.Sanitize()
}

// Validate reports configuration that cannot run.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(c.IsDev); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GetEnabledServices(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// detectDevMode falls back to NODE_ENV when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	return c.serviceEnabled(ServiceModeHTTP)
}

// IsMailerEnabled returns true if the mail queue worker is enabled.
func (c *AppConfig) IsMailerEnabled() bool {
	return c.serviceEnabled(ServiceModeMailer)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}

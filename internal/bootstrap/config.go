package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/campushub/eventhub/config"
)

// InitLogger installs a JSON logger on stdout as the slog default. LOG_LEVEL
// (debug, info, warn, error) is read directly so logging works before config loads.
func InitLogger() *slog.Logger {
	level := slog.LevelInfo
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelInfo
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads an optional .env file, parses the environment and rejects
// configurations the server cannot run with.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
	}

	cfg, err := env.ParseAs[config.AppConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ValidateServiceConfig checks SERVICES names at least one known mode and that
// the mailer is not requested without Redis.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	if _, err := cfg.GetEnabledServices(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}
	if cfg.IsMailerEnabled() && !cfg.Redis.Enabled {
		return errors.New("invalid service configuration: mailer requires REDIS_ENABLED=true")
	}
	return nil
}

// GetEnabledServices lists the enabled modes in canonical order, or nothing
// when SERVICES is invalid.
func GetEnabledServices(cfg *config.AppConfig) []string {
	var names []string
	if cfg == nil {
		return names
	}
	enabled, err := cfg.GetEnabledServices()
	if err != nil {
		return names
	}
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			names = append(names, string(mode))
		}
	}
	return names
}

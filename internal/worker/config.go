package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Secret         string        `env:"WORKER_SECRET"`
	MaxWorkers     int           `env:"MAX_WORKERS,default=4"`
	HandlerTimeout time.Duration `env:"WORKER_HANDLER_TIMEOUT,default=2m"`
	IdleDelay      time.Duration `env:"WORKER_IDLE_DELAY,default=1s"`
	MaxIdleDelay   time.Duration `env:"WORKER_MAX_IDLE_DELAY,default=60s"`
}

// to help with testing
var envProcess = envconfig.Process

func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.MaxWorkers < 1 {
		errors = append(errors, "MAX_WORKERS must be at least 1")
	}

	if cfg.HandlerTimeout <= 0 {
		errors = append(errors, "WORKER_HANDLER_TIMEOUT must be positive")
	}

	if cfg.IdleDelay <= 0 {
		errors = append(errors, "WORKER_IDLE_DELAY must be positive")
	}

	if cfg.MaxIdleDelay < cfg.IdleDelay {
		errors = append(errors, "WORKER_MAX_IDLE_DELAY must not be below WORKER_IDLE_DELAY")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

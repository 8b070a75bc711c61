package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr      string `env:"REDIS_ADDR,default=localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB,default=0"`
	KeyPrefix string `env:"QUEUE_KEY_PREFIX,default=jobs"`
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

	if strings.TrimSpace(cfg.Addr) == "" {
		errors = append(errors, "REDIS_ADDR is required")
	}

	if cfg.DB < 0 || cfg.DB > 15 {
		errors = append(errors, "REDIS_DB must be between 0 and 15")
	}

	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		errors = append(errors, "QUEUE_KEY_PREFIX is required")
	}

	if strings.ContainsAny(cfg.KeyPrefix, " \t") {
		errors = append(errors, "QUEUE_KEY_PREFIX must not contain whitespace")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

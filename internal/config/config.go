// Package config содержит логику чтения конфигурации клиента голдстор.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиента голдстор.
type Config struct {
	BaseURL        string        `env:"BASE_URL"`
	TokenFile      string        `env:"TOKEN_FILE"`
	PollInterval   time.Duration `env:"POLL_INTERVAL"`
	PollTimeout    time.Duration `env:"POLL_TIMEOUT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envBaseURL := cfg.BaseURL
	envTokenFile := cfg.TokenFile
	envPollInterval := cfg.PollInterval
	envPollTimeout := cfg.PollTimeout
	envRequestTimeout := cfg.RequestTimeout

	flag.StringVar(&cfg.BaseURL, "b", "http://localhost:8080", "storefront backend base URL")
	flag.StringVar(&cfg.TokenFile, "t", ".goldstore-token", "path to persisted credential token")
	flag.DurationVar(&cfg.PollInterval, "i", 5*time.Second, "payment status poll interval")
	flag.DurationVar(&cfg.PollTimeout, "m", 2*time.Minute, "payment status poll max duration")
	flag.DurationVar(&cfg.RequestTimeout, "q", 10*time.Second, "per-request HTTP timeout")

	flag.Parse()

	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envTokenFile != "" {
		cfg.TokenFile = envTokenFile
	}
	if envPollInterval != 0 {
		cfg.PollInterval = envPollInterval
	}
	if envPollTimeout != 0 {
		cfg.PollTimeout = envPollTimeout
	}
	if envRequestTimeout != 0 {
		cfg.RequestTimeout = envRequestTimeout
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}

	return cfg, nil
}

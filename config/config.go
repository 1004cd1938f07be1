// Package config loads settings from the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Backend
	APIBase     string        `env:"CHAT_API_BASE" envDefault:"http://localhost:8000"`
	HTTPTimeout time.Duration `env:"CHAT_HTTP_TIMEOUT" envDefault:"0s"`

	// Logging
	LogFile  string `env:"CHAT_LOG_FILE" envDefault:"logs/assistant-chat.log"`
	LogLevel string `env:"CHAT_LOG_LEVEL" envDefault:"info"`

	// SSH front door
	SSHListen   string `env:"CHAT_SSH_LISTEN" envDefault:":2222"`
	HostKeyPath string `env:"CHAT_HOST_KEY" envDefault:".keystore/host_key"`

	// Stub backend
	MockAddr string `env:"CHAT_MOCK_ADDR" envDefault:":8000"`
}

// LoadDotenv loads the given .env files, defaulting to ./.env. A missing file
// is not an error.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return errors.New("CHAT_API_BASE must not be empty")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("CHAT_HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}

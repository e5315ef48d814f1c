package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bootstrapbugz/backend/libs/clients"
	libconfig "bootstrapbugz/backend/libs/config"
)

// Config defines console gateway configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CONSOLE_HTTP_PORT"`
	} `yaml:"http"`
	Upstream struct {
		AdminURL string        `yaml:"adminUrl" env:"BUGZ_ADMIN_URL"`
		AuthURL  string        `yaml:"authUrl" env:"BUGZ_AUTH_URL"`
		Timeout  time.Duration `yaml:"timeout" env:"BUGZ_HTTP_TIMEOUT"`
	} `yaml:"upstream"`
	RateLimit struct {
		Requests int           `yaml:"requests" env:"CONSOLE_RATE_LIMIT_REQUESTS"`
		Interval time.Duration `yaml:"interval" env:"CONSOLE_RATE_LIMIT_INTERVAL"`
	} `yaml:"rateLimit"`
	Audit struct {
		DSN string `yaml:"dsn" env:"CONSOLE_AUDIT_DSN"`
	} `yaml:"audit"`
}

// Load reads configuration via the shared helper and fills defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := libconfig.LoadConfig(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if strings.TrimSpace(c.HTTP.Port) == "" {
		c.HTTP.Port = "8080"
	}
	if strings.TrimSpace(c.Upstream.AdminURL) == "" {
		c.Upstream.AdminURL = clients.DefaultAdminURL
	}
	if strings.TrimSpace(c.Upstream.AuthURL) == "" {
		c.Upstream.AuthURL = clients.DefaultAuthURL
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 5 * time.Second
	}
	if c.RateLimit.Requests < 0 {
		return errors.New("config: rate limit requests must not be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Interval <= 0 {
		c.RateLimit.Interval = time.Minute
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

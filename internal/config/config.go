// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // per window per client IP
	Window   time.Duration `yaml:"window"`
}

type ServerConfig struct {
	Port           int             `yaml:"port"`
	CORSOrigins    []string        `yaml:"cors_origins"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type SessionConfig struct {
	MaxSessions  int           `yaml:"max_sessions"`
	MaxMessages  int           `yaml:"max_messages"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	ReapInterval time.Duration `yaml:"reap_interval"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty: in-memory user store
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty: in-process rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AssistantConfig struct {
	Language   string `yaml:"language"`    // reply catalog name, <language>.yaml
	RepliesDir string `yaml:"replies_dir"` // empty: built-in replies
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Sessions SessionConfig  `yaml:"sessions"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	Assistant AssistantConfig `yaml:"assistant"`

	Runtime RuntimeConfig `yaml:"-"`
}

const devJWTSecret = "dev-only-insecure-secret"

// LoadConfig reads the YAML file at path. A missing file is only accepted in
// dev mode, where every field falls back to its default.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && dev:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.Server.RateLimit.Requests <= 0 {
		c.Server.RateLimit.Requests = 60
	}
	c.Server.RateLimit.Window = orDefault(c.Server.RateLimit.Window, time.Minute)
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Assistant.Language == "" {
		c.Assistant.Language = "en"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Sessions.MaxSessions <= 0 {
		c.Sessions.MaxSessions = 1000
	}
	if c.Sessions.MaxMessages <= 0 {
		c.Sessions.MaxMessages = 50
	}
	c.Sessions.IdleTimeout = orDefault(c.Sessions.IdleTimeout, 30*time.Minute)
	c.Sessions.ReapInterval = orDefault(c.Sessions.ReapInterval, 5*time.Minute)

	c.Auth.AccessTTL = orDefault(c.Auth.AccessTTL, 15*time.Minute)
	c.Auth.RefreshTTL = orDefault(c.Auth.RefreshTTL, 7*24*time.Hour)
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Auth.JWTSecret == "" && c.Runtime.Dev {
		c.Auth.JWTSecret = devJWTSecret
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if !c.Runtime.Dev && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 characters")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost %d out of range [4,31]", c.Auth.BcryptCost)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q must be json or console", c.Log.Format)
	}
	if c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

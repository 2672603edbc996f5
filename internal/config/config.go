// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const minSigningKeyLen = 32

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Session     SessionConfig     `yaml:"session"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MarketplaceConfig defines the MercadoLibre application registration and
// endpoints.
type MarketplaceConfig struct {
	ClientID     string          `yaml:"client_id"`
	ClientSecret string          `yaml:"client_secret"`
	CallbackURL  string          `yaml:"callback_url"`
	SiteID       string          `yaml:"site_id"`
	APIURL       string          `yaml:"api_url"`
	AuthURL      string          `yaml:"auth_url"`
	Timeout      time.Duration   `yaml:"timeout"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines outbound marketplace rate limiting.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// SessionConfig defines the browser session and its backend.
type SessionConfig struct {
	Backend       string        `yaml:"backend"` // memory, postgres, redis
	CookieName    string        `yaml:"cookie_name"`
	SigningKey    string        `yaml:"signing_key"`
	TTL           time.Duration `yaml:"ttl"`
	Secure        bool          `yaml:"secure"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// RedisConfig defines the Redis session backend.
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig defines OTLP trace export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, then decodes, defaults and
// validates it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyMarketplaceDefaults(&cfg.Marketplace)
	applySessionDefaults(&cfg.Session)
	applyDatabaseDefaults(&cfg.Database)
	applyRedisDefaults(&cfg.Redis)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
}

func applyMarketplaceDefaults(m *MarketplaceConfig) {
	if m.SiteID == "" {
		m.SiteID = "MLA"
	}
	if m.APIURL == "" {
		m.APIURL = "https://api.mercadolibre.com"
	}
	if m.AuthURL == "" {
		m.AuthURL = "https://auth.mercadolibre.com.ar"
	}
	if m.Timeout == 0 {
		m.Timeout = 30 * time.Second
	}
	applyRateLimitDefaults(&m.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applySessionDefaults(s *SessionConfig) {
	if s.Backend == "" {
		s.Backend = BackendMemory
	}
	if s.CookieName == "" {
		s.CookieName = "meli_session"
	}
	if s.TTL == 0 {
		s.TTL = 24 * time.Hour
	}
	if s.PurgeInterval == 0 {
		s.PurgeInterval = 15 * time.Minute
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "meli-lister"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Marketplace.ClientID == "" {
		errs = append(errs, fmt.Errorf("marketplace.client_id is required"))
	}
	if cfg.Marketplace.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("marketplace.client_secret is required"))
	}
	if cfg.Marketplace.CallbackURL == "" {
		errs = append(errs, fmt.Errorf("marketplace.callback_url is required"))
	} else if u, err := url.Parse(cfg.Marketplace.CallbackURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf(
			"marketplace.callback_url must be an absolute URL (got %q)",
			cfg.Marketplace.CallbackURL,
		))
	}

	if len(cfg.Session.SigningKey) < minSigningKeyLen {
		errs = append(errs, fmt.Errorf(
			"session.signing_key must be at least %d bytes", minSigningKeyLen,
		))
	}

	switch cfg.Session.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when session backend is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when session backend is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when session backend is postgres"))
		}
	case BackendRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis.addr is required when session backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"session.backend must be one of: memory, postgres, redis (got %q)",
			cfg.Session.Backend,
		))
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, fmt.Errorf("tracing.endpoint is required when tracing is enabled"))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf(
			"tracing.sample_ratio must be between 0 and 1 (got %g)", cfg.Tracing.SampleRatio,
		))
	}

	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Nonce store backends.
const (
	NonceBackendMemory = "memory"
	NonceBackendRedis  = "redis"
	NonceBackendMySQL  = "mysql"
)

// Consumer credential sources.
const (
	ConsumerSourceFile  = "file"
	ConsumerSourceMySQL = "mysql"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LTI       LTIConfig
	Nonce     NonceConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"3306"`
	User            string        `envconfig:"DB_USER" default:"app"`
	Password        string        `envconfig:"DB_PASSWORD" default:"apppassword"`
	Name            string        `envconfig:"DB_NAME" default:"lti"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	// EnsureSchema creates the lti_nonces and lti_consumers tables on startup.
	EnsureSchema bool `envconfig:"DB_ENSURE_SCHEMA" default:"true"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type LTIConfig struct {
	// ConsumerSource selects where consumer secrets come from: file or mysql.
	ConsumerSource string `envconfig:"LTI_CONSUMER_SOURCE" default:"file"`
	ConsumersFile  string `envconfig:"LTI_CONSUMERS_FILE" default:"consumers.yaml"`
	// PublicBaseURL, when set, replaces scheme and host of the signed URL.
	// Needed behind proxies that rewrite Host.
	PublicBaseURL string `envconfig:"LTI_PUBLIC_BASE_URL" default:""`
	// TrustForwardedProto honors X-Forwarded-Proto when PublicBaseURL is unset.
	TrustForwardedProto bool   `envconfig:"LTI_TRUST_FORWARDED_PROTO" default:"false"`
	LaunchPath          string `envconfig:"LTI_LAUNCH_PATH" default:"/lti/launch"`
}

type NonceConfig struct {
	Backend string `envconfig:"NONCE_BACKEND" default:"redis"`
	// SweepSchedule is the cron spec for purging old rows of the mysql backend.
	SweepSchedule string `envconfig:"NONCE_SWEEP_SCHEDULE" default:"@every 5m"`
}

type RateLimitConfig struct {
	Enabled bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64       `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst   int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Idle    time.Duration `envconfig:"RATE_LIMIT_IDLE" default:"10m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects backend names and URLs the service cannot act on.
func (c *Config) Validate() error {
	switch c.Nonce.Backend {
	case NonceBackendMemory, NonceBackendRedis, NonceBackendMySQL:
	default:
		return fmt.Errorf("invalid NONCE_BACKEND %q", c.Nonce.Backend)
	}

	switch c.LTI.ConsumerSource {
	case ConsumerSourceFile, ConsumerSourceMySQL:
	default:
		return fmt.Errorf("invalid LTI_CONSUMER_SOURCE %q", c.LTI.ConsumerSource)
	}

	if c.LTI.PublicBaseURL != "" {
		u, err := url.Parse(c.LTI.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid LTI_PUBLIC_BASE_URL %q", c.LTI.PublicBaseURL)
		}
		c.LTI.PublicBaseURL = strings.TrimRight(c.LTI.PublicBaseURL, "/")
	}

	if !strings.HasPrefix(c.LTI.LaunchPath, "/") {
		return fmt.Errorf("LTI_LAUNCH_PATH must start with /")
	}
	return nil
}

// NeedsMySQL reports whether any component is backed by MySQL.
func (c *Config) NeedsMySQL() bool {
	return c.Nonce.Backend == NonceBackendMySQL || c.LTI.ConsumerSource == ConsumerSourceMySQL
}

// NeedsRedis reports whether the nonce store lives in Redis.
func (c *Config) NeedsRedis() bool {
	return c.Nonce.Backend == NonceBackendRedis
}

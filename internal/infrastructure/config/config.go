package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT,         default=3000"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:5173"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET,      required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,       default=24h"`
	RateLimit int           `env:"AUTH_RATE_LIMIT, default=20"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     required"`
	Database string        `env:"MONGO_DB,      default=Kata"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// RedisConfig is optional; an empty Addr disables rate limiting.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// TelemetryConfig is optional; an empty Endpoint disables trace export.
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME, default=sweetshop-api"`
}

// ToolConfig is the subset read by maintenance commands that only talk to
// the document store.
type ToolConfig struct {
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Mongo    MongoConfig
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration through lookuper using go-envconfig. Pass
// envconfig.OsLookuper() in binaries.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := process(ctx, &cfg, lookuper); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadTool reads the ToolConfig through lookuper.
func LoadTool(ctx context.Context, lookuper envconfig.Lookuper) (*ToolConfig, error) {
	var cfg ToolConfig
	if err := process(ctx, &cfg, lookuper); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func process(ctx context.Context, target any, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be blank"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.RateLimit <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must be positive"))
	}
	if c.Mongo.Timeout <= 0 {
		errs = append(errs, errors.New("MONGO_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

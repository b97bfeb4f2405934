package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`

	// AccessTokenExpireMinutes is the session token lifetime.
	AccessTokenExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	// CORSAllowedOrigins is empty by default: no cross-origin access.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=transactions_api"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,       default=0"`
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL, default=10m"`
}

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.AccessTokenExpireMinutes <= 0 {
		return nil, fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.AccessTokenExpireMinutes)
	}
	return &cfg, nil
}

// MustLoad is Load for process start-up: it panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}

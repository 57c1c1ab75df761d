package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Upload UploadConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portfolio"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	// LockTTL bounds how long a crashed upload can block the next one.
	LockTTL time.Duration `env:"UPLOAD_LOCK_TTL, default=30s"`
}

type UploadConfig struct {
	Dir           string `env:"UPLOAD_DIR,       default=./uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL,  default=http://localhost:8080"`
	MaxBytes      int64  `env:"UPLOAD_MAX_BYTES, default=10485760"`
	MaxWidth      int    `env:"IMAGE_MAX_WIDTH,  default=600"`
	// MaxPixels bounds width*height of an upload, checked before decoding.
	MaxPixels int64 `env:"IMAGE_MAX_PIXELS, default=40000000"`
	Workers   int   `env:"RESIZE_WORKERS,   default=4"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper, e.g. envconfig.MapLookuper in tests.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Upload.MaxBytes <= 0 {
		return nil, fmt.Errorf("load config: UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.Upload.MaxPixels <= 0 {
		return nil, fmt.Errorf("load config: IMAGE_MAX_PIXELS must be positive")
	}
	return &cfg, nil
}

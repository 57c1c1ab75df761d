package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "portfolio", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 600, cfg.Upload.MaxWidth)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 4, cfg.Upload.Workers)
	assert.Equal(t, int64(40_000_000), cfg.Upload.MaxPixels)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"ENV":              "production",
		"TOKEN_TTL":        "90m",
		"MONGO_URI":        "mongodb://mongo:27017",
		"IMAGE_MAX_WIDTH":  "800",
		"IMAGE_MAX_PIXELS": "1000000",
		"PUBLIC_BASE_URL":  "https://api.example.com",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, 800, cfg.Upload.MaxWidth)
	assert.Equal(t, int64(1_000_000), cfg.Upload.MaxPixels)
	assert.Equal(t, "https://api.example.com", cfg.Upload.PublicBaseURL)
}

func TestLoadFrom_Errors(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err, "JWT_SECRET is required")

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"TOKEN_TTL":  "soon",
	}))
	assert.Error(t, err)

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"UPLOAD_MAX_BYTES": "0",
	}))
	assert.Error(t, err)

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"IMAGE_MAX_PIXELS": "-1",
	}))
	assert.Error(t, err)
}

package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func required() map[string]string {
	return map[string]string{
		"JWT_SECRET": "s3cret",
		"MONGO_URI":  "mongodb://localhost:27017",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), envconfig.MapLookuper(required()))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 20, cfg.Auth.RateLimit)
	assert.Equal(t, "Kata", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, "sweetshop-api", cfg.Telemetry.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	env := required()
	env["PORT"] = "8080"
	env["ENV"] = "production"
	env["TOKEN_TTL"] = "1h"
	env["REDIS_ADDR"] = "redis:6379"
	env["REDIS_DB"] = "2"

	cfg, err := Load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"JWT_SECRET", "MONGO_URI"} {
		t.Run(key, func(t *testing.T) {
			env := required()
			delete(env, key)

			_, err := Load(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_RejectsNonPositiveValues(t *testing.T) {
	env := required()
	env["AUTH_RATE_LIMIT"] = "0"
	env["TOKEN_TTL"] = "-1m"

	_, err := Load(context.Background(), envconfig.MapLookuper(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_RATE_LIMIT")
	assert.Contains(t, err.Error(), "TOKEN_TTL")
}

func TestLoadTool_NeedsOnlyMongo(t *testing.T) {
	cfg, err := LoadTool(context.Background(), envconfig.MapLookuper(map[string]string{
		"MONGO_URI": "mongodb://db:27017",
	}))
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "Kata", cfg.Mongo.Database)

	_, err = LoadTool(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

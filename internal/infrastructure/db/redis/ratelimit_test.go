package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_ReportsBackendErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRateLimiter(client, 20)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	d, err := l.Allow(ctx, "auth:10.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth:10.0.0.1")
	assert.False(t, d.Allowed)
}

func TestNewRateLimiter_PerMinute(t *testing.T) {
	l := NewRateLimiter(redis.NewClient(&redis.Options{}), 20)
	assert.Equal(t, 20, l.limit.Rate)
	assert.Equal(t, 20, l.limit.Burst)
	assert.Equal(t, time.Minute, l.limit.Period)
}

func TestConnect_FailsWithoutServer(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestNewClient_RateLimitSettings(t *testing.T) {
	client := newClient(Config{Addr: "cache:6379", Password: "secret", DB: 2})
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "sweetshop-ratelimit", opts.ClientName)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)

	named := newClient(Config{Addr: "cache:6379", ClientName: "sweetshop-admin", Timeout: time.Second})
	t.Cleanup(func() { _ = named.Close() })
	assert.Equal(t, "sweetshop-admin", named.Options().ClientName)
	assert.Equal(t, time.Second, named.Options().DialTimeout)
}

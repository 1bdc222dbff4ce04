package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultClientName  = "sweetshop-ratelimit"

	// Limiter commands must give up before the auth request does.
	commandTimeout = 250 * time.Millisecond
)

// Config holds the settings of the Redis instance backing the auth rate limiter.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialling and the start-up ping.
	Timeout time.Duration
	// ClientName shows up in CLIENT LIST; defaults to sweetshop-ratelimit.
	ClientName string
}

func newClient(cfg Config) *redis.Client {
	dial := cfg.Timeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   name,
		DialTimeout:  dial,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
		MaxRetries:   1,
	})
}

// Connect builds the rate-limit client and checks the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := newClient(cfg)

	pingCtx, cancel := context.WithTimeout(ctx, client.Options().DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

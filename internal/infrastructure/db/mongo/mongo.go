package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Handle is the process-wide connection shared by every repository. The
// first successful Database call connects; concurrent callers wait for that
// attempt instead of dialling again. A failed attempt is not cached, so the
// next call retries.
type Handle struct {
	cfg     Config
	connect func(context.Context, Config) (*mongo.Client, *mongo.Database, error)

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg, connect: Connect}
}

// Database returns the connected database, connecting on first use.
func (h *Handle) Database(ctx context.Context) (*mongo.Database, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}

	client, db, err := h.connect(ctx, h.cfg)
	if err != nil {
		return nil, err
	}
	h.client, h.db = client, db
	return db, nil
}

// Close disconnects the client if a connection was ever established.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client == nil {
		return nil
	}
	err := h.client.Disconnect(ctx)
	h.client, h.db = nil, nil
	return err
}

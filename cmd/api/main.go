// @title           Sweet Shop API
// @version         1.0
// @description     Inventory, purchase and restock of a sweet shop.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-envconfig"

	_ "github.com/sweetshop/api/docs"
	"github.com/sweetshop/api/internal/api"
	"github.com/sweetshop/api/internal/core/service"
	"github.com/sweetshop/api/internal/infrastructure/config"
	mongodb "github.com/sweetshop/api/internal/infrastructure/db/mongo"
	"github.com/sweetshop/api/internal/infrastructure/db/redis"
	"github.com/sweetshop/api/internal/infrastructure/http/handlers"
	"github.com/sweetshop/api/internal/infrastructure/queue"
	"github.com/sweetshop/api/internal/infrastructure/tracing"
	"github.com/sweetshop/api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx, envconfig.OsLookuper())
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.Telemetry.ServiceName,
	})

	// Everything opened from here on is released on every return path.
	var opened closers
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		opened.close(closeCtx, log)
		log.Info().Msg("shutdown complete")
	}()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
	})
	if err != nil {
		return err
	}
	opened.add("tracing", shutdownTracing)

	// --- Document store ---
	store := mongodb.NewHandle(mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	opened.add("mongodb", store.Close)

	db, err := store.Database(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	authRepo := mongodb.NewAuthRepository(db)
	sweetRepo := mongodb.NewSweetRepository(db)
	movementRepo := mongodb.NewMovementRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":           authRepo.EnsureIndexes,
		"sweets":          sweetRepo.EnsureIndexes,
		"stock_movements": movementRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	// Closed before the store so queued movements still reach it.
	movements := queue.NewDispatcher(0, movementRepo, logger.Component("movements"))
	movements.Start()
	opened.add("stock movements", movements.Stop)

	// --- Optional rate limiting ---
	var rdb *goredis.Client
	deps := api.Deps{
		Log:          log,
		ServiceName:  cfg.Telemetry.ServiceName,
		JWTSecret:    cfg.Auth.JWTSecret,
		FrontendURL:  cfg.FrontendURL,
		AuthService:  service.NewAuthService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		SweetService: service.NewSweetService(sweetRepo, movements, logger.Component("sweets")),
	}
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, auth rate limiting disabled")
			rdb = nil
		} else {
			deps.AuthLimiter = redis.NewRateLimiter(rdb, cfg.Auth.RateLimit)
			opened.add("redis", func(context.Context) error { return rdb.Close() })
		}
	}
	deps.Checks = map[string]handlers.Check{
		"mongodb": handlers.MongoCheck(store),
		"redis":   handlers.RedisCheck(rdb),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	opened.add("http server", srv.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("server shutting down")
	}
	return nil
}

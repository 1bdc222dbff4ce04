// Command promote-admin changes the role of an existing account.
//
//	go run ./cmd/promote-admin -username alice -role admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/infrastructure/config"
	mongodb "github.com/sweetshop/api/internal/infrastructure/db/mongo"
	"github.com/sweetshop/api/pkg/logger"
)

func main() {
	username := flag.String("username", "adminsuper", "account to update")
	role := flag.String("role", domain.RoleAdmin, "role to assign (admin or user)")
	flag.Parse()

	if err := run(context.Background(), *username, *role); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, username, role string) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadTool(ctx, envconfig.OsLookuper())
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "promote-admin"})

	store := mongodb.NewHandle(mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	defer func() { _ = store.Close(context.Background()) }()

	db, err := store.Database(ctx)
	if err != nil {
		return err
	}

	users := mongodb.NewAuthRepository(db)
	before, err := users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("user %q not found", username)
	}
	if err != nil {
		return err
	}
	if before.Role == role {
		log.Info().Str("username", username).Str("role", role).Msg("role unchanged")
		return nil
	}

	updated, err := users.UpdateRole(ctx, username, role)
	if err != nil {
		return err
	}
	log.Info().
		Str("username", updated.Username).
		Str("from", before.Role).
		Str("to", updated.Role).
		Msg("role updated")
	return nil
}

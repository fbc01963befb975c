// Command create-admin bootstraps the admin account from ADMIN_USERNAME and
// ADMIN_PASSWORD. There is no self-service signup; this is how the first
// (and usually only) user gets created.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pixlock/service/internal/auth"
	"github.com/pixlock/service/internal/config"
	"github.com/pixlock/service/internal/db"
)

func main() {
	cfg := config.Load()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD is not set")
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	svc := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)

	u, err := svc.CreateUser(context.Background(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			log.Fatal().Str("username", username).Msg("user already exists")
		}
		log.Fatal().Err(err).Msg("create admin user failed")
	}

	log.Info().Int64("id", u.ID).Str("username", u.Username).Msg("admin user created")
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hostelhub/hostelhub-api/internal/config"
	"github.com/hostelhub/hostelhub-api/internal/pkg/database"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

func main() {
	var (
		down  = flag.Int("down", 0, "roll back this many migrations instead of applying")
		path  = flag.String("path", "", "migrations source (defaults to MIGRATIONS_PATH)")
		dbURL = flag.String("database", "", "postgres url (defaults to DATABASE_URL)")
	)
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	if *path == "" {
		*path = cfg.MigrationsPath
	}
	if *dbURL == "" {
		*dbURL = cfg.DatabaseURL
	}
	if *dbURL == "" {
		fmt.Fprintln(os.Stderr, "missing -database or DATABASE_URL")
		os.Exit(2)
	}

	if *down > 0 {
		if err := database.MigrateDown(*path, *dbURL, *down); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		log.Info().Int("steps", *down).Msg("Migrations rolled back")
		return
	}

	if err := database.Migrate(*path, *dbURL); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

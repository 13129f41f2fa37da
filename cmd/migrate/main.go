// Migrate applies or rolls back the audit log schema from embedded SQL.
//
//	go run ./cmd/migrate -direction up
package main

import (
	"context"
	"errors"
	"flag"

	"copperx-bot/internal/config"
	"copperx-bot/internal/db/migrate"
	"copperx-bot/internal/log"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("migrate: DATABASE_URL is not set; the audit log is disabled without it")
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info(context.Background()).Str("direction", *direction).Msg("migrate: already at target version")
			return
		}
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info(context.Background()).Str("direction", *direction).Msg("migrate: done")
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/fleetspot/internal/adapters/postgres"
	"github.com/samirrijal/fleetspot/internal/adapters/sqlite"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}
	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatalf("unknown command: %s", direction)
	}

	cfg, err := config.Load("fleetspot-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db, direction); err != nil {
			log.Fatalf("migrate %s: %v", direction, err)
		}

	case config.BackendSQLite:
		// Open already applies pending migrations.
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			log.Fatalf("sqlite: %v", err)
		}
		defer db.Close()
		if direction == "down" {
			if err := db.MigrateDown(); err != nil {
				log.Fatalf("migrate down: %v", err)
			}
		}
		version, dirty, err := db.MigrateVersion()
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		slog.Info("sqlite schema", "version", version, "dirty", dirty)

	case config.BackendDynamoDB:
		slog.Info("dynamodb tables are provisioned outside this tool", "drivers", cfg.DynamoDB.DriversTable, "locations", cfg.DynamoDB.LocationsTable)
		return
	}

	slog.Info("migrations complete", "backend", cfg.Storage.Backend, "direction", direction)
}

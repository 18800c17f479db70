// Package storage opens the repository backend selected by storage.backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/fleetspot/internal/adapters/dynamodb"
	"github.com/samirrijal/fleetspot/internal/adapters/postgres"
	"github.com/samirrijal/fleetspot/internal/adapters/sqlite"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
)

// Backend bundles the repositories of one storage engine.
type Backend struct {
	Name      string
	Drivers   ports.DriverRepository
	Locations ports.LocationRepository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the underlying store.
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases connections held by the backend.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the configured backend. For postgres, pool metrics are
// reported until ctx is cancelled.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		slog.Info("storage backend ready", "backend", "postgres", "host", cfg.Database.Host)
		return &Backend{
			Name:      config.BackendPostgres,
			Drivers:   postgres.NewDriverRepo(db),
			Locations: postgres.NewLocationRepo(db),
			ping:      db.Ping,
			close:     db.Close,
		}, nil

	case config.BackendDynamoDB:
		store, err := dynamodb.New(ctx, dynamodb.Options{
			Region:          cfg.DynamoDB.Region,
			Endpoint:        cfg.DynamoDB.Endpoint,
			AccessKeyID:     cfg.DynamoDB.AccessKeyID,
			SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
			DriversTable:    cfg.DynamoDB.DriversTable,
			LocationsTable:  cfg.DynamoDB.LocationsTable,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb: %w", err)
		}
		slog.Info("storage backend ready", "backend", "dynamodb", "region", cfg.DynamoDB.Region)
		return &Backend{
			Name:      config.BackendDynamoDB,
			Drivers:   dynamodb.NewDriverRepo(store),
			Locations: dynamodb.NewLocationRepo(store),
			ping:      store.Ping,
		}, nil

	case config.BackendSQLite:
		return openSQLite(cfg.SQLite.Path)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openSQLite(path string) (*Backend, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	slog.Info("storage backend ready", "backend", "sqlite", "path", path)
	return &Backend{
		Name:      config.BackendSQLite,
		Drivers:   sqlite.NewDriverRepo(db),
		Locations: sqlite.NewLocationRepo(db),
		ping:      db.Ping,
		close: func() {
			if err := db.Close(); err != nil {
				slog.Warn("close sqlite", "error", err)
			}
		},
	}, nil
}

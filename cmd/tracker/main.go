package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/fleetspot/internal/adapters/nats"
	"github.com/samirrijal/fleetspot/internal/adapters/valkey"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
)

// The tracker follows the location stream and keeps each driver's last
// known position in the cache.
func main() {
	cfg, err := config.Load("fleetspot-tracker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	tracker := usecases.NewTrackerService(cache)
	if err := sub.SubscribeLocations(ctx, tracker.RecordLastPosition); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("tracker started", "subjects", natsadapter.LocationSubjects, "durable", cfg.NATS.Durable)
	<-ctx.Done()
	slog.Info("shutdown signal received, draining subscription")
}

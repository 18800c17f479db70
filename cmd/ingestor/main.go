package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/samirrijal/fleetspot/internal/adapters/kafka"
	natsadapter "github.com/samirrijal/fleetspot/internal/adapters/nats"
	"github.com/samirrijal/fleetspot/internal/adapters/storage"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
	"github.com/samirrijal/fleetspot/internal/pkg/telemetry"
)

// The ingestor consumes location samples from Kafka and records them.
func main() {
	cfg, err := config.Load("fleetspot-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	tz, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatalf("analytics timezone: %v", err)
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, location events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	locations := usecases.NewLocationService(store.Drivers, store.Locations, nil, publisher, nil, tz)

	consumer := kafkaadapter.NewConsumer(kafkaadapter.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Warn("close kafka reader", "error", err)
		}
	}()

	slog.Info("ingestor started", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	if err := consumer.Run(ctx, locations.Ingest); err != nil {
		log.Fatalf("consume: %v", err)
	}
	slog.Info("ingestor stopped")
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/fleetspot/internal/adapters/http"
	natsadapter "github.com/samirrijal/fleetspot/internal/adapters/nats"
	"github.com/samirrijal/fleetspot/internal/adapters/nominatim"
	"github.com/samirrijal/fleetspot/internal/adapters/storage"
	"github.com/samirrijal/fleetspot/internal/adapters/valkey"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
	"github.com/samirrijal/fleetspot/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("fleetspot-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
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

	// Storage
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	deps := &http.Dependencies{
		Storage:   store,
		RateLimit: cfg.Server.RateLimit,
	}

	// Cache
	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching and tracking disabled", "error", err)
	} else {
		defer vk.Close()
		cache = vk
		deps.Cache = vk
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, location events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	// Use cases
	geocoder := nominatim.New(cfg.Nominatim.URL, cfg.Nominatim.UserAgent, time.Duration(cfg.Nominatim.Timeout)*time.Second)
	regions := usecases.NewRegionService(geocoder, cache)

	deps.Drivers = usecases.NewDriverService(store.Drivers)
	deps.Locations = usecases.NewLocationService(store.Drivers, store.Locations, regions, publisher, geospatial.NewRandomGenerator(), tz)
	deps.Hotspots = usecases.NewHotspotService(regions, store.Locations, cache, tz, cfg.Analytics.MaxClusterPoints)
	deps.Distances = usecases.NewDistanceService(store.Locations, tz)
	if cache != nil {
		deps.Tracker = usecases.NewTrackerService(vk)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Fleetspot API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(append([]string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowOrigins...), ", "),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", store.Name)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

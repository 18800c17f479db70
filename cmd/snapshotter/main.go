package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	minioadapter "github.com/samirrijal/fleetspot/internal/adapters/minio"
	"github.com/samirrijal/fleetspot/internal/adapters/nominatim"
	"github.com/samirrijal/fleetspot/internal/adapters/storage"
	"github.com/samirrijal/fleetspot/internal/adapters/valkey"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/config"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
	"github.com/samirrijal/fleetspot/internal/workflows"
)

// Without flags the snapshotter runs a worker. With -city, -state and -date
// it starts one snapshot workflow and waits for its result.
func main() {
	city := flag.String("city", "", "city to snapshot")
	state := flag.String("state", "", "state or region of the city")
	date := flag.String("date", "", "day to snapshot, YYYY-MM-DD")
	tier := flag.String("tier", "tight", "clustering tier: tight or broad")
	flag.Parse()

	cfg, err := config.Load("fleetspot-snapshotter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if *city != "" || *state != "" || *date != "" {
		startSnapshot(c, cfg.Temporal.TaskQueue, workflows.SnapshotInput{
			City:  *city,
			State: *state,
			Date:  *date,
			Tier:  *tier,
		})
		return
	}

	runWorker(c, cfg)
}

func runWorker(c client.Client, cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tz, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatalf("analytics timezone: %v", err)
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	snapshots, err := minioadapter.New(ctx, minioadapter.Options{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		Region:    cfg.MinIO.Region,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Fatalf("minio: %v", err)
	}

	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, region lookups uncached", "error", err)
	} else {
		defer vk.Close()
		cache = vk
	}

	geocoder := nominatim.New(cfg.Nominatim.URL, cfg.Nominatim.UserAgent, time.Duration(cfg.Nominatim.Timeout)*time.Second)
	regions := usecases.NewRegionService(geocoder, cache)
	// Snapshots always recompute, so the hotspot result cache is bypassed.
	hotspots := usecases.NewHotspotService(regions, store.Locations, nil, tz, cfg.Analytics.MaxClusterPoints)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.HotspotSnapshotWorkflow)
	w.RegisterActivity(&workflows.SnapshotActivities{
		Hotspots: hotspots,
		Store:    snapshots,
	})

	slog.Info("snapshot worker started", "task_queue", cfg.Temporal.TaskQueue, "bucket", cfg.MinIO.Bucket)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startSnapshot(c client.Client, taskQueue string, input workflows.SnapshotInput) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        input.WorkflowID(),
		TaskQueue: taskQueue,
	}, workflows.HotspotSnapshotWorkflow, input)
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("snapshot workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var key string
	if err := run.Get(ctx, &key); err != nil {
		log.Fatalf("snapshot workflow: %v", err)
	}
	slog.Info("snapshot stored", "key", key)
}

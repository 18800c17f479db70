package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fleetspot/internal/core/usecases"
)

// Pinger is a dependency whose reachability is reported by /v1/ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Drivers   *usecases.DriverService
	Locations *usecases.LocationService
	Hotspots  *usecases.HotspotService
	Distances *usecases.DistanceService
	Tracker   *usecases.TrackerService
	NATS      *nats.Conn
	Storage   Pinger
	Cache     Pinger
	// RateLimit is the number of requests per minute allowed per client IP.
	RateLimit int
}

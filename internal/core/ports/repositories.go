package ports

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// ErrRegionNotFound is returned by a RegionResolver that has no match for a place.
var ErrRegionNotFound = errors.New("region not found")

// DriverRepository persists drivers.
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	// List returns a page of drivers ordered by creation time and the total count.
	List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error)
}

// LocationRepository persists location samples.
type LocationRepository interface {
	Insert(ctx context.Context, sample *domain.Sample) error
	InsertBatch(ctx context.Context, samples []domain.Sample) error
	// FindInRegion returns the points of all samples inside box with a
	// timestamp in [from, to]. limit <= 0 means no limit.
	FindInRegion(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error)
	// FindByDriver returns a driver's samples in [from, to] ordered by
	// ascending timestamp.
	FindByDriver(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error)
}

// RegionResolver turns a place name into a bounding box.
type RegionResolver interface {
	Resolve(ctx context.Context, city, state string) (domain.BoundingBox, error)
}

// SnapshotStore archives hotspot results.
type SnapshotStore interface {
	Put(ctx context.Context, snapshot *domain.HotspotSnapshot) error
	Get(ctx context.Context, key string) (*domain.HotspotSnapshot, error)
}

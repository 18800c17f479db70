package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
)

// Snapshotter computes an archivable hotspot result.
type Snapshotter interface {
	Snapshot(ctx context.Context, q usecases.HotspotQuery) (*domain.HotspotSnapshot, error)
}

// SnapshotActivities holds the activity implementations for the snapshot workflow.
type SnapshotActivities struct {
	Hotspots Snapshotter
	Store    ports.SnapshotStore
}

// ComputeHotspots clusters the samples of one region and day.
func (a *SnapshotActivities) ComputeHotspots(ctx context.Context, in SnapshotInput) (*domain.HotspotSnapshot, error) {
	snapshot, err := a.Hotspots.Snapshot(ctx, usecases.HotspotQuery{
		City:  in.City,
		State: in.State,
		Date:  in.Date,
		Tier:  in.Tier,
	})
	if err != nil {
		if permanent(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidSnapshotRequest", err)
		}
		return nil, fmt.Errorf("compute hotspots: %w", err)
	}
	activity.GetLogger(ctx).Info("hotspots computed", "clusters", len(snapshot.Clusters), "key", snapshot.Key())
	return snapshot, nil
}

// StoreSnapshot archives a snapshot and returns its object key.
func (a *SnapshotActivities) StoreSnapshot(ctx context.Context, snapshot *domain.HotspotSnapshot) (string, error) {
	if snapshot == nil {
		return "", temporal.NewNonRetryableApplicationError("nil snapshot", "InvalidSnapshotRequest", nil)
	}
	if err := a.Store.Put(ctx, snapshot); err != nil {
		return "", fmt.Errorf("store snapshot %s: %w", snapshot.Key(), err)
	}
	return snapshot.Key(), nil
}

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, ports.ErrRegionNotFound) ||
		errors.Is(err, geospatial.ErrTooManyPoints) ||
		errors.Is(err, geospatial.ErrInvalidGeometry)
}

package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
)

const lastPositionTTL = 24 * 60 * 60

// TrackerService keeps each driver's last known position. Several trackers
// may consume the same stream; the cache arbitrates which sample is newest.
type TrackerService struct {
	cache ports.PositionCache
}

// NewTrackerService creates a new TrackerService.
func NewTrackerService(cache ports.PositionCache) *TrackerService {
	return &TrackerService{cache: cache}
}

func lastPositionKey(driverID string) string {
	return "tracker:last:{" + driverID + "}"
}

// positionVersion orders samples by timestamp. Fixed-width decimal keeps
// byte order equal to numeric order.
func positionVersion(ts time.Time) string {
	ns := ts.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return fmt.Sprintf("%020d", ns)
}

// RecordLastPosition stores sample unless a newer one is already recorded.
func (s *TrackerService) RecordLastPosition(ctx context.Context, sample *domain.Sample) error {
	if sample.DriverID == "" {
		return fmt.Errorf("%w: driverId is required", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	if _, err := s.cache.SetIfNewer(ctx, lastPositionKey(sample.DriverID), data, positionVersion(sample.Timestamp), lastPositionTTL); err != nil {
		return fmt.Errorf("store last position: %w", err)
	}
	return nil
}

// LastPosition returns the most recent sample recorded for driverID.
func (s *TrackerService) LastPosition(ctx context.Context, driverID string) (*domain.Sample, error) {
	data, err := s.cache.Get(ctx, lastPositionKey(driverID))
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load last position: %w", err)
	}

	var sample domain.Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("decode last position: %w", err)
	}
	return &sample, nil
}

package usecases

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
	"github.com/samirrijal/fleetspot/internal/pkg/telemetry"
)

// UnitMeters is the unit of every reported distance.
const UnitMeters = "meters"

// DistanceService computes how far drivers travelled.
type DistanceService struct {
	locations ports.LocationRepository
	tz        *time.Location
}

// NewDistanceService creates a new DistanceService.
func NewDistanceService(locations ports.LocationRepository, tz *time.Location) *DistanceService {
	if tz == nil {
		tz = time.UTC
	}
	return &DistanceService{locations: locations, tz: tz}
}

// DistanceTravelled sums the great-circle distance between a driver's
// consecutive samples on date.
func (s *DistanceService) DistanceTravelled(ctx context.Context, driverID, date string) (*domain.DistanceReport, error) {
	if driverID == "" {
		return nil, fmt.Errorf("%w: driverId is required", domain.ErrInvalidInput)
	}
	from, to, err := DayWindow(date, s.tz)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "DistanceService.DistanceTravelled")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrDriverID, driverID),
		attribute.String(telemetry.AttrDate, date),
	)

	samples, err := s.locations.FindByDriver(ctx, driverID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load samples: %w", err)
	}
	if err := geospatial.ValidateOrder(samples); err != nil {
		logging.FromContext(ctx).Warn("repository returned unordered samples", "driver_id", driverID, "error", err)
		slices.SortStableFunc(samples, func(a, b domain.Sample) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	}
	metrics.DistanceRequests.Inc()
	span.SetAttributes(attribute.Int(telemetry.AttrPoints, len(samples)))

	return &domain.DistanceReport{
		DriverID:      driverID,
		Date:          date,
		Samples:       len(samples),
		TotalDistance: geospatial.TotalDistance(samples),
		Unit:          UnitMeters,
	}, nil
}

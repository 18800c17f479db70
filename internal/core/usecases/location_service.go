package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

// Ingestion sources used as metric labels.
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceSeed  = "seed"
)

// LocationService records location samples.
type LocationService struct {
	drivers   ports.DriverRepository
	locations ports.LocationRepository
	regions   ports.RegionResolver
	publisher ports.EventPublisher
	generator *geospatial.Generator
	tz        *time.Location
	now       func() time.Time
}

// NewLocationService creates a new LocationService. publisher may be nil.
func NewLocationService(
	drivers ports.DriverRepository,
	locations ports.LocationRepository,
	regions ports.RegionResolver,
	publisher ports.EventPublisher,
	generator *geospatial.Generator,
	tz *time.Location,
) *LocationService {
	if generator == nil {
		generator = geospatial.NewRandomGenerator()
	}
	if tz == nil {
		tz = time.UTC
	}
	return &LocationService{
		drivers:   drivers,
		locations: locations,
		regions:   regions,
		publisher: publisher,
		generator: generator,
		tz:        tz,
		now:       time.Now,
	}
}

// AddLocation stores a sample for an existing driver stamped with the current time.
func (s *LocationService) AddLocation(ctx context.Context, driverID string, p domain.Point) (*domain.Sample, error) {
	if driverID == "" {
		return nil, fmt.Errorf("%w: driverId is required", domain.ErrInvalidInput)
	}
	if err := geospatial.ValidatePoint(p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if _, err := s.drivers.GetByID(ctx, driverID); err != nil {
		return nil, fmt.Errorf("driver %s: %w", driverID, err)
	}

	sample := &domain.Sample{
		ID:        uuid.NewString(),
		Point:     p,
		DriverID:  driverID,
		Timestamp: s.now().UTC(),
	}
	if err := s.store(ctx, sample, SourceHTTP); err != nil {
		return nil, err
	}
	return sample, nil
}

// Ingest stores an externally timestamped sample. The driver id is trusted.
func (s *LocationService) Ingest(ctx context.Context, sample *domain.Sample) error {
	if sample.DriverID == "" {
		metrics.IngestErrors.WithLabelValues(SourceKafka).Inc()
		return fmt.Errorf("%w: driverId is required", domain.ErrInvalidInput)
	}
	if sample.Timestamp.IsZero() {
		metrics.IngestErrors.WithLabelValues(SourceKafka).Inc()
		return fmt.Errorf("%w: createdAt is required", domain.ErrInvalidInput)
	}
	if err := geospatial.ValidatePoint(sample.Point); err != nil {
		metrics.IngestErrors.WithLabelValues(SourceKafka).Inc()
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	return s.store(ctx, sample, SourceKafka)
}

// SeedRandom generates a day of random samples inside a region for a driver
// and stores them.
func (s *LocationService) SeedRandom(ctx context.Context, city, state, date, driverID string) ([]domain.Sample, error) {
	if driverID == "" {
		return nil, fmt.Errorf("%w: driverId is required", domain.ErrInvalidInput)
	}
	day, _, err := DayWindow(date, s.tz)
	if err != nil {
		return nil, err
	}
	box, err := s.regions.Resolve(ctx, city, state)
	if err != nil {
		return nil, err
	}

	samples, err := s.generator.Generate(box, day, driverID)
	if err != nil {
		return nil, fmt.Errorf("generate samples: %w", err)
	}
	for i := range samples {
		samples[i].ID = uuid.NewString()
	}

	if err := s.locations.InsertBatch(ctx, samples); err != nil {
		metrics.IngestErrors.WithLabelValues(SourceSeed).Add(float64(len(samples)))
		return nil, fmt.Errorf("insert samples: %w", err)
	}
	metrics.LocationsIngested.WithLabelValues(SourceSeed).Add(float64(len(samples)))
	return samples, nil
}

func (s *LocationService) store(ctx context.Context, sample *domain.Sample, source string) error {
	if err := s.locations.Insert(ctx, sample); err != nil {
		metrics.IngestErrors.WithLabelValues(source).Inc()
		return fmt.Errorf("insert location: %w", err)
	}
	metrics.LocationsIngested.WithLabelValues(source).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishLocation(ctx, sample); err != nil {
			logging.FromContext(ctx).Warn("publish location failed",
				"driver_id", sample.DriverID, "error", err)
		}
	}
	return nil
}

package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
)

func TestDistanceService_DistanceTravelled(t *testing.T) {
	day := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	samples := []domain.Sample{
		{DriverID: "d1", Point: domain.Point{Latitude: 0, Longitude: 0}, Timestamp: day.Add(time.Hour)},
		{DriverID: "d1", Point: domain.Point{Latitude: 0, Longitude: 1}, Timestamp: day.Add(2 * time.Hour)},
	}
	locs := &mockLocationRepo{
		findByDriver: func(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
			if driverID != "d1" {
				t.Errorf("expected driver d1, got %s", driverID)
			}
			return samples, nil
		},
	}
	svc := usecases.NewDistanceService(locs, time.UTC)

	report, err := svc.DistanceTravelled(context.Background(), "d1", "2024-05-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Samples != 2 || report.Unit != usecases.UnitMeters {
		t.Errorf("unexpected report %+v", report)
	}
	if math.Abs(report.TotalDistance-111195) > 50 {
		t.Errorf("expected ~111195 m, got %f", report.TotalDistance)
	}
}

func TestDistanceService_DistanceTravelled_SingleSample(t *testing.T) {
	locs := &mockLocationRepo{
		findByDriver: func(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
			return []domain.Sample{{DriverID: driverID, Timestamp: from}}, nil
		},
	}
	svc := usecases.NewDistanceService(locs, nil)

	report, err := svc.DistanceTravelled(context.Background(), "d1", "2024-05-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Samples != 1 || report.TotalDistance != 0 {
		t.Errorf("expected zero distance for one sample, got %+v", report)
	}
}

func TestDistanceService_DistanceTravelled_SortsUnorderedInput(t *testing.T) {
	day := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	a := domain.Point{Latitude: 43.26, Longitude: -2.93}
	b := domain.Point{Latitude: 43.30, Longitude: -2.90}
	c := domain.Point{Latitude: 43.26, Longitude: -2.95}
	locs := &mockLocationRepo{
		findByDriver: func(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
			return []domain.Sample{
				{Point: c, Timestamp: day.Add(3 * time.Hour)},
				{Point: a, Timestamp: day.Add(1 * time.Hour)},
				{Point: b, Timestamp: day.Add(2 * time.Hour)},
			}, nil
		},
	}
	svc := usecases.NewDistanceService(locs, time.UTC)

	report, err := svc.DistanceTravelled(context.Background(), "d1", "2024-05-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := geospatial.Distance(a, b) + geospatial.Distance(b, c)
	if math.Abs(report.TotalDistance-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, report.TotalDistance)
	}
}

func TestDistanceService_DistanceTravelled_Validation(t *testing.T) {
	svc := usecases.NewDistanceService(&mockLocationRepo{}, time.UTC)

	if _, err := svc.DistanceTravelled(context.Background(), "", "2024-05-17"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing driver: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.DistanceTravelled(context.Background(), "d1", "May 17"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad date: expected ErrInvalidInput, got %v", err)
	}
}

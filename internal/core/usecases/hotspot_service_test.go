package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
)

func densePoints() []domain.Point {
	return []domain.Point{
		{Latitude: 43.2630, Longitude: -2.9350},
		{Latitude: 43.2631, Longitude: -2.9351},
		{Latitude: 43.2632, Longitude: -2.9352},
		{Latitude: 43.2700, Longitude: -2.9000},
		{Latitude: 43.2701, Longitude: -2.9001},
		{Latitude: 43.2200, Longitude: -2.9800},
	}
}

func TestHotspotService_GetHotspots(t *testing.T) {
	locs := &mockLocationRepo{
		findInRegion: func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
			if box != bilbaoBox {
				t.Errorf("expected region box, got %+v", box)
			}
			if want := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
				t.Errorf("from: expected %v, got %v", want, from)
			}
			if want := time.Date(2024, 5, 17, 23, 59, 59, 0, time.UTC); !to.Equal(want) {
				t.Errorf("to: expected %v, got %v", want, to)
			}
			return densePoints(), nil
		},
	}
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, locs, nil, time.UTC, 0)

	clusters, err := svc.GetHotspots(context.Background(), usecases.HotspotQuery{
		City: "Bilbao", State: "Basque Country", Date: "2024-05-17",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if len(clusters[0].Points) != 3 || len(clusters[1].Points) != 2 {
		t.Errorf("expected sizes [3 2], got [%d %d]", len(clusters[0].Points), len(clusters[1].Points))
	}
}

func TestHotspotService_GetHotspots_BroadTierNeedsMorePoints(t *testing.T) {
	locs := &mockLocationRepo{
		findInRegion: func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
			return densePoints(), nil
		},
	}
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, locs, nil, time.UTC, 0)

	clusters, err := svc.GetHotspots(context.Background(), usecases.HotspotQuery{
		City: "Bilbao", State: "Basque Country", Date: "2024-05-17", Tier: "broad",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("expected no broad clusters, got %d", len(clusters))
	}
	if clusters == nil {
		t.Error("expected empty, non-nil result")
	}
}

func TestHotspotService_GetHotspots_UnknownTier(t *testing.T) {
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, &mockLocationRepo{}, nil, time.UTC, 0)

	_, err := svc.GetHotspots(context.Background(), usecases.HotspotQuery{
		City: "Bilbao", State: "Basque Country", Date: "2024-05-17", Tier: "huge",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHotspotService_GetHotspots_Ceiling(t *testing.T) {
	var gotLimit int
	locs := &mockLocationRepo{
		findInRegion: func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
			gotLimit = limit
			return densePoints(), nil
		},
	}
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, locs, nil, time.UTC, 5)

	_, err := svc.GetHotspots(context.Background(), usecases.HotspotQuery{
		City: "Bilbao", State: "Basque Country", Date: "2024-05-17",
	})
	if !errors.Is(err, geospatial.ErrTooManyPoints) {
		t.Fatalf("expected ErrTooManyPoints, got %v", err)
	}
	if gotLimit != 6 {
		t.Errorf("expected repository limit 6, got %d", gotLimit)
	}
}

func TestHotspotService_GetHotspots_RegionNotFound(t *testing.T) {
	svc := usecases.NewHotspotService(&mockResolver{err: ports.ErrRegionNotFound}, &mockLocationRepo{}, nil, time.UTC, 0)

	_, err := svc.GetHotspots(context.Background(), usecases.HotspotQuery{
		City: "Atlantis", State: "Nowhere", Date: "2024-05-17",
	})
	if !errors.Is(err, ports.ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
}

func TestHotspotService_GetHotspots_Cached(t *testing.T) {
	calls := 0
	locs := &mockLocationRepo{
		findInRegion: func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
			calls++
			return densePoints(), nil
		},
	}
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, locs, newMemCache(), time.UTC, 0)
	q := usecases.HotspotQuery{City: "Bilbao", State: "Basque Country", Date: "2024-05-17"}

	first, err := svc.GetHotspots(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GetHotspots(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call, got %d", calls)
	}
	if len(first) != len(second) || first[0].Center != second[0].Center {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestHotspotService_Snapshot(t *testing.T) {
	locs := &mockLocationRepo{
		findInRegion: func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
			return densePoints(), nil
		},
	}
	svc := usecases.NewHotspotService(&mockResolver{box: bilbaoBox}, locs, nil, time.UTC, 0)

	snap, err := svc.Snapshot(context.Background(), usecases.HotspotQuery{
		City: "Bilbao", State: "Basque Country", Date: "2024-05-17",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Tier != geospatial.TierTight {
		t.Errorf("expected default tier %q, got %q", geospatial.TierTight, snap.Tier)
	}
	if got, want := snap.Key(), "hotspots/basque-country/bilbao/2024-05-17/tight.json"; got != want {
		t.Errorf("expected key %q, got %q", want, got)
	}
	if len(snap.Clusters) != 2 {
		t.Errorf("expected 2 clusters, got %d", len(snap.Clusters))
	}
}

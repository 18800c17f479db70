package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/usecases"
)

func TestTrackerService_RecordAndRead(t *testing.T) {
	svc := usecases.NewTrackerService(newMemCache())
	ts := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	in := &domain.Sample{ID: "s1", DriverID: "d1", Point: domain.Point{Latitude: 43.26, Longitude: -2.93}, Timestamp: ts}
	if err := svc.RecordLastPosition(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.LastPosition(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" || got.Point != in.Point || !got.Timestamp.Equal(ts) {
		t.Errorf("unexpected sample %+v", got)
	}
}

func TestTrackerService_KeepsNewest(t *testing.T) {
	svc := usecases.NewTrackerService(newMemCache())
	ts := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	_ = svc.RecordLastPosition(context.Background(), &domain.Sample{ID: "new", DriverID: "d1", Timestamp: ts})
	_ = svc.RecordLastPosition(context.Background(), &domain.Sample{ID: "old", DriverID: "d1", Timestamp: ts.Add(-time.Minute)})

	got, err := svc.LastPosition(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "new" {
		t.Errorf("expected newest sample kept, got %s", got.ID)
	}
}

func TestTrackerService_Unknown(t *testing.T) {
	svc := usecases.NewTrackerService(newMemCache())

	if _, err := svc.LastPosition(context.Background(), "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrackerService_ConcurrentWritersKeepNewest(t *testing.T) {
	svc := usecases.NewTrackerService(newMemCache())
	base := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	const writers = 64
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := &domain.Sample{ID: fmt.Sprintf("s%02d", i), DriverID: "d1", Timestamp: base.Add(time.Duration(i) * time.Second)}
			if err := svc.RecordLastPosition(context.Background(), s); err != nil {
				t.Errorf("record %s: %v", s.ID, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.LastPosition(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := fmt.Sprintf("s%02d", writers-1); got.ID != want {
		t.Errorf("expected %s kept, got %s", want, got.ID)
	}
}

func TestTrackerService_RejectsStaleAfterNewer(t *testing.T) {
	cache := newMemCache()
	svc := usecases.NewTrackerService(cache)
	ts := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	_ = svc.RecordLastPosition(context.Background(), &domain.Sample{ID: "new", DriverID: "d1", Timestamp: ts})
	_ = svc.RecordLastPosition(context.Background(), &domain.Sample{ID: "old", DriverID: "d1", Timestamp: ts.Add(-time.Nanosecond)})

	if cache.sets != 1 {
		t.Errorf("expected one stored write, got %d", cache.sets)
	}
}

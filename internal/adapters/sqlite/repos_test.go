package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/fleetspot/internal/adapters/sqlite"
	"github.com/samirrijal/fleetspot/internal/core/domain"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Up is idempotent.
	require.NoError(t, db.MigrateUp())
}

func TestOpen_MigrateDown(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateDown())

	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestDriverRepo(t *testing.T) {
	db := openTestDB(t)
	repo := sqlite.NewDriverRepo(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"Ane", "Iker", "Maite"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &domain.Driver{ID: name, Name: name, CreatedAt: ts, UpdatedAt: ts}))
	}

	got, err := repo.GetByID(ctx, "Iker")
	require.NoError(t, err)
	assert.Equal(t, "Iker", got.Name)
	assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))

	_, err = repo.GetByID(ctx, "nobody")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	page, total, err := repo.List(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Iker", page[0].ID)
	assert.Equal(t, "Maite", page[1].ID)
}

func TestLocationRepo(t *testing.T) {
	db := openTestDB(t)
	repo := sqlite.NewLocationRepo(db)
	ctx := context.Background()

	day := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	end := day.Add(24*time.Hour - time.Second)
	samples := []domain.Sample{
		{ID: "s1", DriverID: "d1", Point: domain.Point{Latitude: 43.26, Longitude: -2.93}, Timestamp: day.Add(3 * time.Hour)},
		{ID: "s2", DriverID: "d1", Point: domain.Point{Latitude: 43.27, Longitude: -2.92}, Timestamp: day.Add(1 * time.Hour)},
		{ID: "s3", DriverID: "d2", Point: domain.Point{Latitude: 43.25, Longitude: -2.94}, Timestamp: day.Add(2 * time.Hour)},
		{ID: "s4", DriverID: "d1", Point: domain.Point{Latitude: 40.41, Longitude: -3.70}, Timestamp: day.Add(4 * time.Hour)},
		{ID: "s5", DriverID: "d1", Point: domain.Point{Latitude: 43.26, Longitude: -2.93}, Timestamp: end.Add(time.Second)},
	}
	require.NoError(t, repo.InsertBatch(ctx, samples))
	// Duplicate ids are ignored.
	require.NoError(t, repo.Insert(ctx, &samples[0]))

	t.Run("by driver ordered", func(t *testing.T) {
		got, err := repo.FindByDriver(ctx, "d1", day, end)
		require.NoError(t, err)
		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.ID
		}
		if diff := cmp.Diff([]string{"s2", "s1", "s4"}, ids); diff != "" {
			t.Errorf("ids mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, got[0].Timestamp.Equal(day.Add(time.Hour)))
	})

	t.Run("in region", func(t *testing.T) {
		box := domain.BoundingBox{South: 43.2, North: 43.3, West: -3.0, East: -2.9}
		got, err := repo.FindInRegion(ctx, box, day, end, 0)
		require.NoError(t, err)
		want := []domain.Point{samples[1].Point, samples[2].Point, samples[0].Point}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("points mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("in region limited", func(t *testing.T) {
		box := domain.BoundingBox{South: -90, North: 90, West: -180, East: 180}
		got, err := repo.FindInRegion(ctx, box, day, end, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const insertLocation = `
	INSERT INTO locations (id, driver_id, latitude, longitude, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING
`

// Insert stores a single sample. Re-inserting an id is a no-op.
func (r *LocationRepo) Insert(ctx context.Context, s *domain.Sample) error {
	_, err := r.db.Pool.Exec(ctx, insertLocation,
		s.ID, s.DriverID, s.Point.Latitude, s.Point.Longitude, s.Timestamp)
	return err
}

// InsertBatch stores many samples using pgx.Batch.
func (r *LocationRepo) InsertBatch(ctx context.Context, samples []domain.Sample) error {
	batch := &pgx.Batch{}
	for _, s := range samples {
		batch.Queue(insertLocation, s.ID, s.DriverID, s.Point.Latitude, s.Point.Longitude, s.Timestamp)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range samples {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// FindInRegion returns sample points inside box recorded in [from, to].
func (r *LocationRepo) FindInRegion(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
	query := `
		SELECT latitude, longitude FROM locations
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		  AND created_at BETWEEN $5 AND $6
		ORDER BY created_at, id`
	args := []any{box.South, box.North, box.West, box.East, from, to}
	if limit > 0 {
		query += ` LIMIT $7`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.Point
	for rows.Next() {
		var p domain.Point
		if err := rows.Scan(&p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// FindByDriver returns a driver's samples in [from, to], oldest first.
func (r *LocationRepo) FindByDriver(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, driver_id, latitude, longitude, created_at FROM locations
		WHERE driver_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at, id
	`, driverID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var s domain.Sample
		if err := rows.Scan(&s.ID, &s.DriverID, &s.Point.Latitude, &s.Point.Longitude, &s.Timestamp); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

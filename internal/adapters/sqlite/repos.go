package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(ns int64) time.Time { return time.Unix(0, ns).UTC() }

// DriverRepo implements ports.DriverRepository on SQLite.
type DriverRepo struct {
	db *DB
}

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *DB) *DriverRepo {
	return &DriverRepo{db: db}
}

// Create inserts a driver.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drivers (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, toNanos(d.CreatedAt), toNanos(d.UpdatedAt))
	return err
}

// GetByID returns a driver or domain.ErrNotFound.
func (r *DriverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	var (
		d                domain.Driver
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM drivers WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.CreatedAt, d.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &d, nil
}

// List returns a page of drivers ordered by creation time.
func (r *DriverRepo) List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM drivers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drivers: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM drivers ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, limit)
	for rows.Next() {
		var (
			d                domain.Driver
			created, updated int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &created, &updated); err != nil {
			return nil, 0, err
		}
		d.CreatedAt, d.UpdatedAt = fromNanos(created), fromNanos(updated)
		drivers = append(drivers, d)
	}
	return drivers, total, rows.Err()
}

// LocationRepo implements ports.LocationRepository on SQLite.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const insertLocation = `INSERT OR IGNORE INTO locations (id, driver_id, latitude, longitude, created_at) VALUES (?, ?, ?, ?, ?)`

// Insert stores a single sample. Re-inserting an id is a no-op.
func (r *LocationRepo) Insert(ctx context.Context, s *domain.Sample) error {
	_, err := r.db.ExecContext(ctx, insertLocation,
		s.ID, s.DriverID, s.Point.Latitude, s.Point.Longitude, toNanos(s.Timestamp))
	return err
}

// InsertBatch stores many samples in one transaction.
func (r *LocationRepo) InsertBatch(ctx context.Context, samples []domain.Sample) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertLocation)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.ID, s.DriverID, s.Point.Latitude, s.Point.Longitude, toNanos(s.Timestamp)); err != nil {
			return fmt.Errorf("insert sample %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// FindInRegion returns sample points inside box recorded in [from, to].
func (r *LocationRepo) FindInRegion(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
	query := `SELECT latitude, longitude FROM locations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		  AND created_at BETWEEN ? AND ?
		ORDER BY created_at, id`
	args := []any{box.South, box.North, box.West, box.East, toNanos(from), toNanos(to)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	rows, err := r.db.QueryContext(ctx, `SELECT id, driver_id, latitude, longitude, created_at FROM locations
		WHERE driver_id = ? AND created_at BETWEEN ? AND ?
		ORDER BY created_at, id`, driverID, toNanos(from), toNanos(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var (
			s  domain.Sample
			ns int64
		)
		if err := rows.Scan(&s.ID, &s.DriverID, &s.Point.Latitude, &s.Point.Longitude, &ns); err != nil {
			return nil, err
		}
		s.Timestamp = fromNanos(ns)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

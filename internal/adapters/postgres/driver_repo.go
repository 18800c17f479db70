package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// DriverRepo implements ports.DriverRepository with pgx.
type DriverRepo struct {
	db *DB
}

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *DB) *DriverRepo {
	return &DriverRepo{db: db}
}

// Create inserts a driver.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO drivers (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
	return err
}

// GetByID returns a driver or domain.ErrNotFound.
func (r *DriverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	d := &domain.Driver{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM drivers WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns a page of drivers ordered by creation time.
func (r *DriverRepo) List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM drivers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drivers: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM drivers ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, limit)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		drivers = append(drivers, d)
	}
	return drivers, total, rows.Err()
}

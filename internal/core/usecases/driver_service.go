package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
)

// DriverService handles driver registration and lookup.
type DriverService struct {
	drivers ports.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(drivers ports.DriverRepository) *DriverService {
	return &DriverService{drivers: drivers}
}

// Create registers a driver under a fresh id.
func (s *DriverService) Create(ctx context.Context, name string) (*domain.Driver, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	driver := &domain.Driver{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	return driver, nil
}

// GetByID returns a single driver.
func (s *DriverService) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: driver id is required", domain.ErrInvalidInput)
	}
	return s.drivers.GetByID(ctx, id)
}

// List returns a page of drivers and the total count.
func (s *DriverService) List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.drivers.List(ctx, offset, limit)
}

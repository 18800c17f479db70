package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
)

// --- Mock DriverRepository ---

type mockDriverRepo struct {
	createFn  func(ctx context.Context, d *domain.Driver) error
	getByIDFn func(ctx context.Context, id string) (*domain.Driver, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.Driver, int, error)
}

func (m *mockDriverRepo) Create(ctx context.Context, d *domain.Driver) error {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	return nil
}

func (m *mockDriverRepo) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Driver{ID: id, Name: "Ane"}, nil
}

func (m *mockDriverRepo) List(ctx context.Context, offset, limit int) ([]domain.Driver, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	mu            sync.Mutex
	inserted      []domain.Sample
	insertFn      func(ctx context.Context, s *domain.Sample) error
	insertBatchFn func(ctx context.Context, s []domain.Sample) error
	findInRegion  func(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error)
	findByDriver  func(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, s *domain.Sample) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, s)
	}
	m.mu.Lock()
	m.inserted = append(m.inserted, *s)
	m.mu.Unlock()
	return nil
}

func (m *mockLocationRepo) InsertBatch(ctx context.Context, s []domain.Sample) error {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, s)
	}
	m.mu.Lock()
	m.inserted = append(m.inserted, s...)
	m.mu.Unlock()
	return nil
}

func (m *mockLocationRepo) FindInRegion(ctx context.Context, box domain.BoundingBox, from, to time.Time, limit int) ([]domain.Point, error) {
	if m.findInRegion != nil {
		return m.findInRegion(ctx, box, from, to, limit)
	}
	return nil, nil
}

func (m *mockLocationRepo) FindByDriver(ctx context.Context, driverID string, from, to time.Time) ([]domain.Sample, error) {
	if m.findByDriver != nil {
		return m.findByDriver(ctx, driverID, from, to)
	}
	return nil, nil
}

// --- Mock RegionResolver ---

type mockResolver struct {
	calls int
	box   domain.BoundingBox
	err   error
}

func (m *mockResolver) Resolve(ctx context.Context, city, state string) (domain.BoundingBox, error) {
	m.calls++
	return m.box, m.err
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	published []domain.Sample
	err       error
}

func (m *mockPublisher) PublishLocation(ctx context.Context, s *domain.Sample) error {
	m.published = append(m.published, *s)
	return m.err
}

// --- In-memory CacheService ---

type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]string
	sets     int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), versions: make(map[string]string)}
}

func (c *memCache) SetIfNewer(ctx context.Context, key string, value []byte, version string, ttlSeconds int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.versions[key]; ok && cur > version {
		return false, nil
	}
	c.data[key] = value
	c.versions[key] = version
	c.sets++
	return true, nil
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

var bilbaoBox = domain.BoundingBox{South: 43.213, North: 43.290, West: -2.986, East: -2.880}

package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLocation(ctx context.Context, sample *domain.Sample) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeLocations(ctx context.Context, handler func(ctx context.Context, sample *domain.Sample) error) error
}

// ErrCacheMiss is returned by CacheService.Get for an absent or expired key.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PositionCache is a CacheService that can also replace a key only when the
// new version sorts after the stored one, as a single atomic step.
type PositionCache interface {
	CacheService
	// SetIfNewer stores value at key when version is greater than or equal
	// to the stored version (byte order). It reports whether value was stored.
	SetIfNewer(ctx context.Context, key string, value []byte, version string, ttlSeconds int) (bool, error)
}

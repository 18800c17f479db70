package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

const regionTTL = 24 * 60 * 60

// RegionService resolves place names to bounding boxes through a cache.
// It satisfies ports.RegionResolver.
type RegionService struct {
	resolver ports.RegionResolver
	cache    ports.CacheService
}

// NewRegionService creates a new RegionService. cache may be nil.
func NewRegionService(resolver ports.RegionResolver, cache ports.CacheService) *RegionService {
	return &RegionService{resolver: resolver, cache: cache}
}

// Resolve returns the bounding box of city in state.
func (s *RegionService) Resolve(ctx context.Context, city, state string) (domain.BoundingBox, error) {
	city, state = strings.TrimSpace(city), strings.TrimSpace(state)
	if city == "" || state == "" {
		return domain.BoundingBox{}, fmt.Errorf("%w: city and state are required", domain.ErrInvalidInput)
	}

	cacheKey := "region:" + strings.ToLower(state) + ":" + strings.ToLower(city)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var box domain.BoundingBox
			if err := json.Unmarshal(data, &box); err == nil {
				metrics.CacheHits.WithLabelValues("region").Inc()
				return box, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("region").Inc()
	}

	box, err := s.resolver.Resolve(ctx, city, state)
	if err != nil {
		return domain.BoundingBox{}, fmt.Errorf("resolve %s, %s: %w", city, state, err)
	}
	if err := geospatial.ValidateBox(box); err != nil {
		return domain.BoundingBox{}, fmt.Errorf("resolve %s, %s: %w", city, state, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(box); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, regionTTL)
		}
	}
	return box, nil
}

package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
	"github.com/samirrijal/fleetspot/internal/pkg/telemetry"
)

const hotspotTTL = 60

// HotspotQuery selects the samples to cluster.
type HotspotQuery struct {
	City  string
	State string
	Date  string
	Tier  string
}

// HotspotService computes density hotspots for a region and day.
type HotspotService struct {
	regions   ports.RegionResolver
	locations ports.LocationRepository
	cache     ports.CacheService
	tz        *time.Location
	maxPoints int
}

// NewHotspotService creates a new HotspotService. cache may be nil and
// maxPoints <= 0 disables the point ceiling.
func NewHotspotService(
	regions ports.RegionResolver,
	locations ports.LocationRepository,
	cache ports.CacheService,
	tz *time.Location,
	maxPoints int,
) *HotspotService {
	if tz == nil {
		tz = time.UTC
	}
	return &HotspotService{regions: regions, locations: locations, cache: cache, tz: tz, maxPoints: maxPoints}
}

// GetHotspots clusters the samples recorded inside the region during the day,
// largest cluster first.
func (s *HotspotService) GetHotspots(ctx context.Context, q HotspotQuery) ([]domain.Cluster, error) {
	params, err := geospatial.ParamsForTier(q.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	tier := normalizeTier(q.Tier)

	from, to, err := DayWindow(q.Date, s.tz)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "HotspotService.GetHotspots")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrCity, q.City),
		attribute.String(telemetry.AttrState, q.State),
		attribute.String(telemetry.AttrDate, q.Date),
		attribute.String(telemetry.AttrTier, tier),
	)

	cacheKey := fmt.Sprintf("hotspots:%s:%s:%s:%s",
		strings.ToLower(q.State), strings.ToLower(q.City), q.Date, tier)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var clusters []domain.Cluster
			if err := json.Unmarshal(data, &clusters); err == nil {
				metrics.CacheHits.WithLabelValues("hotspots").Inc()
				metrics.HotspotRequests.WithLabelValues(tier, "cached").Inc()
				return clusters, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("hotspots").Inc()
	}

	clusters, err := s.compute(ctx, q, tier, params, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		outcome := "error"
		if errors.Is(err, geospatial.ErrTooManyPoints) {
			outcome = "rejected"
		}
		metrics.HotspotRequests.WithLabelValues(tier, outcome).Inc()
		return nil, err
	}
	metrics.HotspotRequests.WithLabelValues(tier, "ok").Inc()
	span.SetAttributes(attribute.Int(telemetry.AttrClusters, len(clusters)))

	if s.cache != nil {
		if data, err := json.Marshal(clusters); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, hotspotTTL)
		}
	}
	return clusters, nil
}

func (s *HotspotService) compute(ctx context.Context, q HotspotQuery, tier string, params geospatial.Params, from, to time.Time) ([]domain.Cluster, error) {
	box, err := s.regions.Resolve(ctx, q.City, q.State)
	if err != nil {
		return nil, err
	}

	limit := 0
	if s.maxPoints > 0 {
		limit = s.maxPoints + 1
	}
	points, err := s.locations.FindInRegion(ctx, box, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	if s.maxPoints > 0 && len(points) > s.maxPoints {
		return nil, fmt.Errorf("%w: more than %d samples in %s, %s on %s",
			geospatial.ErrTooManyPoints, s.maxPoints, q.City, q.State, q.Date)
	}
	metrics.ClusteredPoints.Observe(float64(len(points)))

	start := time.Now()
	clusters, err := geospatial.Hotspots(points, params)
	metrics.HotspotDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("cluster samples: %w", err)
	}
	return clusters, nil
}

// Snapshot computes hotspots and wraps them for archiving.
func (s *HotspotService) Snapshot(ctx context.Context, q HotspotQuery) (*domain.HotspotSnapshot, error) {
	clusters, err := s.GetHotspots(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.HotspotSnapshot{
		City:        q.City,
		State:       q.State,
		Date:        q.Date,
		Tier:        normalizeTier(q.Tier),
		GeneratedAt: time.Now().UTC(),
		Clusters:    clusters,
	}, nil
}

func normalizeTier(tier string) string {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if tier == "" {
		return geospatial.TierTight
	}
	return tier
}

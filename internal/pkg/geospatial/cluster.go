package geospatial

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// Params tunes DBSCAN for a use case.
type Params struct {
	Epsilon   float64 `json:"epsilon"`
	MinPoints int     `json:"minPoints"`
}

// Clustering tiers exposed to callers.
const (
	TierTight = "tight"
	TierBroad = "broad"
)

var (
	// Tight groups samples at roughly 550 m granularity.
	Tight = Params{Epsilon: 0.005, MinPoints: 2}
	// Broad groups samples at roughly 1.1 km granularity.
	Broad = Params{Epsilon: 0.01, MinPoints: 4}
)

// ParamsForTier returns the preset for a tier name. An empty name selects Tight.
func ParamsForTier(tier string) (Params, error) {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "", TierTight:
		return Tight, nil
	case TierBroad:
		return Broad, nil
	default:
		return Params{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
}

// Finalize computes each cluster's centre and orders clusters by size,
// largest first. Equal-sized clusters keep their discovery order and member
// points keep the order they were given in. Empty groups are dropped.
func Finalize(raw [][]domain.Point) []domain.Cluster {
	clusters := make([]domain.Cluster, 0, len(raw))
	for _, pts := range raw {
		if len(pts) == 0 {
			continue
		}
		lats := make([]float64, len(pts))
		lons := make([]float64, len(pts))
		for i, p := range pts {
			lats[i] = p.Latitude
			lons[i] = p.Longitude
		}
		clusters = append(clusters, domain.Cluster{
			Center: domain.Point{
				Latitude:  stat.Mean(lats, nil),
				Longitude: stat.Mean(lons, nil),
			},
			Points: pts,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Points) > len(clusters[j].Points)
	})
	return clusters
}

// Hotspots runs DBSCAN over points and finalizes the result.
func Hotspots(points []domain.Point, params Params) ([]domain.Cluster, error) {
	groups, err := DBSCAN(points, params.Epsilon, params.MinPoints)
	if err != nil {
		return nil, err
	}

	raw := make([][]domain.Point, len(groups))
	for i, g := range groups {
		members := make([]domain.Point, len(g))
		for k, idx := range g {
			members[k] = points[idx]
		}
		raw[i] = members
	}
	return Finalize(raw), nil
}
